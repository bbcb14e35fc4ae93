package permissions

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/penpal-app/penpal-api/internal/models"
)

func TestCanReadDocument(t *testing.T) {
	public := &models.Document{AuthorID: 1, IsPublic: true}
	private := &models.Document{AuthorID: 1, IsPublic: false}

	require.True(t, CanReadDocument(AnonymousID, public))
	require.True(t, CanReadDocument(2, public))
	require.True(t, CanReadDocument(1, private))
	require.False(t, CanReadDocument(2, private))
	require.False(t, CanReadDocument(AnonymousID, private))
}

func TestCanWriteDocument(t *testing.T) {
	public := &models.Document{AuthorID: 1, IsPublic: true}

	// Public grants reads, never writes.
	require.True(t, CanWriteDocument(1, public))
	require.False(t, CanWriteDocument(2, public))
	require.False(t, CanWriteDocument(AnonymousID, public))
}

func TestCanModifyComment(t *testing.T) {
	doc := &models.Document{AuthorID: 1, IsPublic: true}
	comment := &models.Comment{AuthorID: 2}

	require.True(t, CanModifyComment(2, comment, doc), "comment author")
	require.True(t, CanModifyComment(1, comment, doc), "document author moderates")
	require.False(t, CanModifyComment(3, comment, doc), "unrelated user")
	require.False(t, CanModifyComment(AnonymousID, comment, doc))
}

func TestCanAccessMediaAsset(t *testing.T) {
	doc := &models.Document{AuthorID: 1, IsPublic: true}
	asset := &models.MediaAsset{OwnerID: 2}

	require.True(t, CanAccessMediaAsset(2, asset, doc), "asset owner")
	require.True(t, CanAccessMediaAsset(1, asset, doc), "document author")
	require.False(t, CanAccessMediaAsset(3, asset, doc))
}

func TestAnonymousNeverOwns(t *testing.T) {
	// A document with the zero author ID must not be owned by anonymous.
	doc := &models.Document{AuthorID: AnonymousID, IsPublic: false}
	require.False(t, CanWriteDocument(AnonymousID, doc))
	require.False(t, CanReadDocument(AnonymousID, doc))
}
