package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quiz-app/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/crypto/bcrypt"
)

type MongoUserAuthDAO struct {
	Col      *mongo.Collection
	sessions *SessionStore
}

func NewMongoUserAuthDAO(db *mongo.Database, sessions *SessionStore) *MongoUserAuthDAO {
	return &MongoUserAuthDAO{Col: db.Collection("accounts"), sessions: sessions}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates the account and logs it in.
func (d *MongoUserAuthDAO) SignUp(ctx context.Context, credential models.Credential) (models.Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(credential.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Session{}, fmt.Errorf("hash password: %w", err)
	}

	account := models.Account{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(credential.Email),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UnixMilli(),
	}
	if _, err := d.Col.InsertOne(ctx, account); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Session{}, ErrEmailTaken
		}
		return models.Session{}, fmt.Errorf("insert account: %w", err)
	}

	return d.sessions.Create(ctx, account.ID)
}

func (d *MongoUserAuthDAO) LogIn(ctx context.Context, credential models.Credential) (models.Session, error) {
	var account models.Account
	err := d.Col.FindOne(ctx, bson.D{{Key: "email", Value: normalizeEmail(credential.Email)}}).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Session{}, ErrAccountNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("find account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(credential.Password)); err != nil {
		return models.Session{}, ErrWrongPassword
	}

	return d.sessions.Create(ctx, account.ID)
}

func (d *MongoUserAuthDAO) LogOut(ctx context.Context, sessionID string) error {
	return d.sessions.Revoke(ctx, sessionID)
}

func (d *MongoUserAuthDAO) CurrentUserID(ctx context.Context) (string, error) {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return "", nil
	}
	userID, err := d.sessions.UserID(ctx, session.ID)
	if errors.Is(err, ErrSessionNotFound) {
		return "", nil
	}
	return userID, err
}

func (d *MongoUserAuthDAO) ObserveUserID(ctx context.Context) (<-chan string, error) {
	session, ok := SessionFromContext(ctx)
	if !ok {
		out := make(chan string, 1)
		out <- ""
		close(out)
		return out, nil
	}
	return d.sessions.Observe(ctx, session.ID)
}
