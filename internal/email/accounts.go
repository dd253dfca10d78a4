package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brandon/mail-admin/pkg/types"
)

// ErrAccountNotFound is returned when no account has the requested email
var ErrAccountNotFound = errors.New("account not found")

// FindAccount returns the account whose email equals email, ignoring case.
// The backend search is a substring match, so the exact entry is picked here.
func (m *Manager) FindAccount(ctx context.Context, email string) (*types.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	accounts, err := m.SearchAccounts(ctx, email)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if strings.EqualFold(accounts[i].Email, email) {
			return &accounts[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, email)
}

// ResolveAccountID accepts either an account id or an email address and
// returns the id.
func (m *Manager) ResolveAccountID(ctx context.Context, idOrEmail string) (string, error) {
	idOrEmail = strings.TrimSpace(idOrEmail)
	if !strings.Contains(idOrEmail, "@") {
		if idOrEmail == "" {
			return "", fmt.Errorf("account id or email is required")
		}
		return idOrEmail, nil
	}

	acc, err := m.FindAccount(ctx, idOrEmail)
	if err != nil {
		return "", err
	}
	return acc.ID, nil
}

// DeleteAccountByRef deletes an account given its id or email and drops
// its cached threads when the email is known.
func (m *Manager) DeleteAccountByRef(ctx context.Context, ref string) error {
	id, err := m.ResolveAccountID(ctx, ref)
	if err != nil {
		return err
	}
	if err := m.DeleteAccount(ctx, id); err != nil {
		return err
	}

	if m.store != nil && strings.Contains(ref, "@") {
		if err := m.store.PurgeAccount(strings.TrimSpace(ref)); err != nil {
			m.logger.WithError(err).WithField("account", ref).Warn("Failed to purge cached threads")
		}
	}
	return nil
}
