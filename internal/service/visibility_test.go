package service

import (
	"testing"

	"github.com/AHMED-techNOP/01BLOG/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestIsPostVisible(t *testing.T) {
	owner := &models.User{ID: 1, Role: models.RoleUser}
	other := &models.User{ID: 2, Role: models.RoleUser}
	admin := &models.User{ID: 3, Role: models.RoleAdmin}
	banned := &models.User{ID: 4, Role: models.RoleUser, IsBanned: true}

	visible := &models.Post{ID: 10, UserID: owner.ID}
	hidden := &models.Post{ID: 11, UserID: owner.ID, Hidden: true}

	tests := []struct {
		name   string
		viewer *models.User
		post   *models.Post
		want   bool
	}{
		{"anonymous sees public post", nil, visible, true},
		{"anonymous cannot see hidden post", nil, hidden, false},
		{"stranger sees public post", other, visible, true},
		{"stranger cannot see hidden post", other, hidden, false},
		{"owner sees own hidden post", owner, hidden, true},
		{"admin sees hidden post", admin, hidden, true},
		{"banned viewer sees nothing", banned, visible, false},
		{"banned viewer sees no hidden post", banned, hidden, false},
		{"nil post is never visible", owner, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPostVisible(tt.viewer, tt.post))
		})
	}
}
