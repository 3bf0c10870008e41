// Package store implements the social repositories on top of gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tariel-x/eventease/internal/apperr"
	"github.com/tariel-x/eventease/internal/social"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InTx runs fn inside one database transaction. The transaction commits when
// fn returns nil and rolls back otherwise. Do not touch the Store itself
// while fn runs: the pool holds a single connection.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&Tx{db: db})
	})
}

// Tx is the unit of work handed to the social service.
type Tx struct {
	db *gorm.DB
}

var _ social.UnitOfWork = (*Tx)(nil)

func (t *Tx) Users() social.UserRepository             { return userRepo{db: t.db} }
func (t *Tx) Contacts() social.ContactRepository       { return contactRepo{db: t.db} }
func (t *Tx) Teams() social.TeamRepository             { return teamRepo{db: t.db} }
func (t *Tx) Members() social.MemberRepository         { return memberRepo{db: t.db} }
func (t *Tx) Events() social.EventRepository           { return eventRepo{db: t.db} }
func (t *Tx) Invitations() social.InvitationRepository { return invitationRepo{db: t.db} }
func (t *Tx) TeamInvites() social.TeamInviteRepository { return teamInviteRepo{db: t.db} }

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// insert creates v inside a savepoint so a unique violation leaves the outer
// transaction usable.
func insert(ctx context.Context, db *gorm.DB, v any, what string) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(v).Error
	})
	if isUniqueViolation(err) {
		return apperr.Newf(apperr.Conflict, "%s already exists", what)
	}
	if err != nil {
		return fmt.Errorf("insert %s: %w", what, err)
	}
	return nil
}

func save(ctx context.Context, db *gorm.DB, v any, what string) error {
	err := db.WithContext(ctx).Save(v).Error
	if isUniqueViolation(err) {
		return apperr.Newf(apperr.Conflict, "%s already exists", what)
	}
	if err != nil {
		return fmt.Errorf("update %s: %w", what, err)
	}
	return nil
}

// findOne returns the first row matching the condition or nil.
func findOne[T any](ctx context.Context, db *gorm.DB, query string, args ...any) (*T, error) {
	var rows []T
	res := db.WithContext(ctx).Where(query, args...).Limit(1).Find(&rows)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func byID[T any](ctx context.Context, db *gorm.DB, id uint, what string) (*T, error) {
	row, err := findOne[T](ctx, db, "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("load %s %d: %w", what, id, err)
	}
	if row == nil {
		return nil, apperr.Newf(apperr.NotFound, "%s not found", what)
	}
	return row, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a case-insensitive substring pattern for LIKE ... ESCAPE '\'.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(q))) + "%"
}
