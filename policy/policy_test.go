package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Krish-Depani/mold-tracker/models"
)

func TestListScope(t *testing.T) {
	other := uint(9)

	worker := Principal{ID: 3, Role: models.RoleWorker}
	s := ListScope(worker, &other)
	if assert.NotNil(t, s.OwnerID) {
		assert.Equal(t, uint(3), *s.OwnerID, "worker filter must be forced to self")
	}

	admin := Principal{ID: 1, Role: models.RoleAdmin}
	assert.True(t, ListScope(admin, nil).All())
	assert.Equal(t, &other, ListScope(admin, &other).OwnerID)

	partner := Principal{ID: 2, Role: models.RolePartner}
	assert.True(t, ListScope(partner, nil).All())
}

func TestCanView(t *testing.T) {
	worker := Principal{ID: 3, Role: models.RoleWorker}
	assert.Equal(t, Allow, CanView(worker, 3))
	assert.Equal(t, Deny, CanView(worker, 4))
	assert.Equal(t, Allow, CanView(Principal{ID: 1, Role: models.RoleHQStaff}, 4))
}

func TestCanMutate(t *testing.T) {
	admin := Principal{ID: 1, Role: models.RoleAdmin}
	assert.Equal(t, Hide, CanMutate(admin, 4), "even admins cannot end another user's session")
	assert.Equal(t, Allow, CanMutate(admin, 1))
}

func TestCanReview(t *testing.T) {
	assert.True(t, CanReview(Principal{Role: models.RoleAdmin}))
	assert.True(t, CanReview(Principal{Role: models.RoleHQStaff}))
	assert.False(t, CanReview(Principal{Role: models.RoleWorker}))
	assert.False(t, CanReview(Principal{Role: models.RolePartner}))
}

func TestCanEdit(t *testing.T) {
	worker := Principal{ID: 3, Role: models.RoleWorker}
	assert.Equal(t, Allow, CanEdit(worker, 3))
	assert.Equal(t, Deny, CanEdit(worker, 4))
	assert.Equal(t, Allow, CanEdit(Principal{ID: 1, Role: models.RoleAdmin}, 4))
}
