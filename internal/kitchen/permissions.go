package kitchen

import "forkful/models"

// Operation names an access-controlled action.
type Operation int

const (
	// OpReadCatalog covers every read: recipe, tag, ingredient and profile
	// listings and retrievals.
	OpReadCatalog Operation = iota
	// OpCreateRecipe is publishing a new recipe.
	OpCreateRecipe
	// OpModifyRecipe is updating or deleting an existing recipe.
	OpModifyRecipe
	// OpManageCatalog is writing tags or ingredients.
	OpManageCatalog
	// OpToggleRelation is adding or removing a favorite, cart item or
	// subscription.
	OpToggleRelation
	// OpDownloadShoppingList is exporting the aggregated cart.
	OpDownloadShoppingList
)

// Allowed is the single permission predicate: reads are public, writes need
// an authenticated actor, recipe modification needs the author or staff, and
// catalog management needs staff. actor is nil for anonymous requests;
// ownerID is only consulted for OpModifyRecipe.
func Allowed(actor *models.User, op Operation, ownerID uint) bool {
	switch op {
	case OpReadCatalog:
		return true
	case OpCreateRecipe, OpToggleRelation, OpDownloadShoppingList:
		return actor != nil
	case OpModifyRecipe:
		return actor != nil && (actor.IsStaff || actor.ID == ownerID)
	case OpManageCatalog:
		return actor != nil && actor.IsStaff
	}
	return false
}
