package kitchen

import (
	"testing"

	"gorm.io/gorm"

	"forkful/models"
)

func TestAllowed(t *testing.T) {
	owner := &models.User{Model: gorm.Model{ID: 1}}
	stranger := &models.User{Model: gorm.Model{ID: 2}}
	staff := &models.User{Model: gorm.Model{ID: 3}, IsStaff: true}

	cases := []struct {
		name    string
		actor   *models.User
		op      Operation
		ownerID uint
		want    bool
	}{
		{"anonymous read", nil, OpReadCatalog, 0, true},
		{"anonymous create recipe", nil, OpCreateRecipe, 0, false},
		{"authenticated create recipe", owner, OpCreateRecipe, 0, true},
		{"owner modifies recipe", owner, OpModifyRecipe, 1, true},
		{"stranger modifies recipe", stranger, OpModifyRecipe, 1, false},
		{"staff modifies any recipe", staff, OpModifyRecipe, 1, true},
		{"anonymous toggle", nil, OpToggleRelation, 0, false},
		{"authenticated toggle", stranger, OpToggleRelation, 0, true},
		{"regular user manages catalog", owner, OpManageCatalog, 0, false},
		{"staff manages catalog", staff, OpManageCatalog, 0, true},
		{"anonymous shopping list", nil, OpDownloadShoppingList, 0, false},
		{"authenticated shopping list", owner, OpDownloadShoppingList, 0, true},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allowed(tt.actor, tt.op, tt.ownerID); got != tt.want {
				t.Fatalf("Allowed() = %t, want %t", got, tt.want)
			}
		})
	}
}
