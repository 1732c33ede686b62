package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mAmineChniti/StoryWeave/internal/data"
	"github.com/mAmineChniti/StoryWeave/internal/database"
	"github.com/mAmineChniti/StoryWeave/internal/logger"
)

// Users manages nickname identities. The nickname is the identity used for
// authorship, votes and likes everywhere else.
type Users struct {
	db  database.Service
	log *logger.Logger
	now func() time.Time
}

func NewUsers(db database.Service, log *logger.Logger) *Users {
	return &Users{db: db, log: log, now: time.Now}
}

// LoginOrCreate returns the user with this exact nickname, creating it on
// first login. Existing users get their last login time bumped.
func (u *Users) LoginOrCreate(ctx context.Context, nickname string) (*data.User, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, data.NewValidationError("nickname", "is required")
	}
	now := u.now().UTC()

	user, err := u.db.GetUserByNickname(ctx, nickname)
	if errors.Is(err, data.ErrUserNotFound) {
		user = &data.User{Nickname: nickname, CreatedAt: now, LastLogin: now}
		err = u.db.InsertUser(ctx, user)
		if err == nil {
			u.log.Info("user created", "nickname", nickname)
			return user, nil
		}
		if !errors.Is(err, data.ErrNicknameTaken) {
			return nil, err
		}
		// created concurrently by another login
		user, err = u.db.GetUserByNickname(ctx, nickname)
	}
	if err != nil {
		return nil, err
	}

	user.LastLogin = now
	if err := u.db.ReplaceUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes the nickname and/or bio of a user. Content already
// attributed to the old nickname keeps the old nickname.
func (u *Users) UpdateProfile(ctx context.Context, userID primitive.ObjectID, update data.ProfileUpdate) (*data.User, error) {
	user, err := u.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Nickname != nil {
		nickname := strings.TrimSpace(*update.Nickname)
		if nickname != user.Nickname {
			existing, err := u.db.GetUserByNickname(ctx, nickname)
			switch {
			case err == nil && existing.ID != user.ID:
				return nil, data.ErrNicknameTaken
			case err != nil && !errors.Is(err, data.ErrUserNotFound):
				return nil, err
			}
		}
		user.Nickname = nickname
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if err := data.ValidateStruct(user); err != nil {
		return nil, err
	}

	if err := u.db.ReplaceUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *Users) GetByNickname(ctx context.Context, nickname string) (*data.User, error) {
	return u.db.GetUserByNickname(ctx, strings.TrimSpace(nickname))
}
