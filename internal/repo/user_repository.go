package repo

import (
	"context"
	"fmt"

	"github.com/AmanShaikh33/HUDDLENEW/internal/db"
	"github.com/AmanShaikh33/HUDDLENEW/internal/model"
)

// UserRepository reads user documents owned by the account service.
type UserRepository interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

type userRepository struct {
	mongoRepo *db.Repository[model.User]
}

func NewUserRepository(repo *db.Repository[model.User]) UserRepository {
	return &userRepository{
		mongoRepo: repo,
	}
}

func (r *userRepository) Exists(ctx context.Context, userID string) (bool, error) {
	filter := db.NewFilter().ObjectID("_id", userID).Build()

	exists, err := r.mongoRepo.Exists(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("%w: user lookup: %v", model.ErrStore, err)
	}
	return exists, nil
}
