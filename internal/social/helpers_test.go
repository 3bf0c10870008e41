package social_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tariel-x/eventease/internal/apperr"
	"github.com/tariel-x/eventease/internal/database"
	"github.com/tariel-x/eventease/internal/models"
	"github.com/tariel-x/eventease/internal/social"
	"github.com/tariel-x/eventease/internal/store"
	"github.com/tariel-x/eventease/internal/tokens"
)

var testNow = time.Unix(1_735_689_600, 0).UTC() // 2025-01-01T00:00:00Z

type harness struct {
	t     *testing.T
	ctx   context.Context
	store *store.Store
	svc   *social.Service
	seq   int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := database.Open(":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return &harness{
		t:     t,
		ctx:   context.Background(),
		store: store.New(db),
		svc: social.NewService(tokens.Nanoid{},
			social.WithBcryptCost(bcrypt.MinCost),
			social.WithClock(func() time.Time { return testNow }),
		),
	}
}

// tx runs fn in its own transaction and returns fn's error.
func (h *harness) tx(fn func(uow social.UnitOfWork) error) error {
	return h.store.InTx(h.ctx, func(tx *store.Tx) error { return fn(tx) })
}

// must is tx that fails the test on error.
func (h *harness) must(fn func(uow social.UnitOfWork) error) {
	h.t.Helper()
	if err := h.tx(fn); err != nil {
		h.t.Fatalf("unexpected error: %v", err)
	}
}

func (h *harness) user(name string) *models.User {
	h.t.Helper()
	h.seq++
	var u *models.User
	h.must(func(uow social.UnitOfWork) error {
		var err error
		u, err = h.svc.Register(h.ctx, uow, name, fmt.Sprintf("user%d@example.com", h.seq), "password123")
		return err
	})
	return u
}

func (h *harness) friends(a, b uint) {
	h.t.Helper()
	h.must(func(uow social.UnitOfWork) error {
		if _, err := h.svc.SendContactRequest(h.ctx, uow, a, b); err != nil {
			return err
		}
		_, err := h.svc.AcceptContactRequest(h.ctx, uow, a, b)
		return err
	})
}

func (h *harness) team(owner uint, name string, members ...uint) *models.Team {
	h.t.Helper()
	var team *models.Team
	h.must(func(uow social.UnitOfWork) error {
		var err error
		if team, err = h.svc.CreateTeam(h.ctx, uow, owner, name, ""); err != nil {
			return err
		}
		for _, m := range members {
			if _, err := h.svc.InviteToTeam(h.ctx, uow, owner, team.ID, m, ""); err != nil {
				return err
			}
			if _, err := h.svc.AcceptTeamInvite(h.ctx, uow, m, team.ID); err != nil {
				return err
			}
		}
		return nil
	})
	return team
}

func (h *harness) event(owner uint, title, date, clock string, end *string) *models.Event {
	h.t.Helper()
	var e *models.Event
	h.must(func(uow social.UnitOfWork) error {
		var err error
		e, err = h.svc.CreateEvent(h.ctx, uow, owner, social.EventInput{Title: title, Date: date, Time: clock, EndTime: end})
		return err
	})
	return e
}

func expectKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %q (%v)", kind, got, err)
	}
}

func strPtr(s string) *string { return &s }
