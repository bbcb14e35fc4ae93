// Package permissions implements object-level access control. Every rule is
// a pure function over (actor, entity); the HTTP layer decides how a denial
// is surfaced (403 when the object exists, 404 when it is absent or
// soft-deleted).
package permissions

import "github.com/penpal-app/penpal-api/internal/models"

// AnonymousID is the principal used for unauthenticated callers. It can never
// satisfy an ownership check but may satisfy the public-read branch.
const AnonymousID uint64 = 0

// CanReadDocument allows reads of public documents to anyone and private
// documents to their author only.
func CanReadDocument(actorID uint64, doc *models.Document) bool {
	if doc.IsPublic {
		return true
	}
	return isOwner(actorID, doc.AuthorID)
}

// CanWriteDocument allows updates and deletes to the author only.
func CanWriteDocument(actorID uint64, doc *models.Document) bool {
	return isOwner(actorID, doc.AuthorID)
}

// CanReadComment follows the parent document's read rule.
func CanReadComment(actorID uint64, comment *models.Comment, doc *models.Document) bool {
	return CanReadDocument(actorID, doc)
}

// CanModifyComment allows updates and deletes to the comment author or the
// document author.
func CanModifyComment(actorID uint64, comment *models.Comment, doc *models.Document) bool {
	return isOwner(actorID, comment.AuthorID) || isOwner(actorID, doc.AuthorID)
}

// CanAccessMediaAsset covers both read and write: the asset owner or the
// document author.
func CanAccessMediaAsset(actorID uint64, asset *models.MediaAsset, doc *models.Document) bool {
	return isOwner(actorID, asset.OwnerID) || isOwner(actorID, doc.AuthorID)
}

func isOwner(actorID, ownerID uint64) bool {
	return actorID != AnonymousID && actorID == ownerID
}
