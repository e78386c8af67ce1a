package impl

import (
	"errors"
	"fmt"

	"moderation/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type PasswordServiceImpl struct {
	cost int // current policy used for new hashes
}

func NewPasswordServiceBcrypt(cost int) *PasswordServiceImpl {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordServiceImpl{cost: cost}
}

func (p *PasswordServiceImpl) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password longer than 72 bytes", domain.ErrInvalidRequest)
		}
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash and, on a match, whether the
// hash was made with a lower cost than the current policy.
func (p *PasswordServiceImpl) Verify(password, hash string) (rehashNeeded bool, ok bool) {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return false, false
	}
	cost, err := bcrypt.Cost([]byte(hash))
	return err == nil && cost < p.cost, true
}
