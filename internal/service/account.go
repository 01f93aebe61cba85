package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dtroode/licensekeeper/internal/logger"
	"github.com/dtroode/licensekeeper/internal/model"
	"github.com/dtroode/licensekeeper/internal/password"
	"github.com/dtroode/licensekeeper/internal/random"
)

// ResetRequestInterval is the minimum time between two password reset requests.
const ResetRequestInterval = time.Hour

// CreateUserParams describes an account created with a password.
type CreateUserParams struct {
	Name     string
	Email    string
	Password string
	State    model.UserState
	Level    int
}

// Account manages registration, password reset and login.
type Account struct {
	userStore  model.UserStore
	emailStore model.EmailStore
	hasher     *password.Hasher
	random     *random.Source
	logger     *logger.Logger
	now        func() time.Time
	backoff    func() retry.Backoff
}

func NewAccount(
	userStore model.UserStore,
	emailStore model.EmailStore,
	hasher *password.Hasher,
	random *random.Source,
	logger *logger.Logger,
) *Account {
	return &Account{
		userStore:  userStore,
		emailStore: emailStore,
		hasher:     hasher,
		random:     random,
		logger:     logger,
		now:        utcNow,
		backoff:    defaultBackoff,
	}
}

// CreateUser registers a new account without a password. The email stays
// unverified until the verification code is redeemed.
func (a *Account) CreateUser(ctx context.Context, name, address string) (model.User, model.EmailAddress, error) {
	a.logger.Debug("Account service: creating user", "name", name, "email", address)

	if name == "" || address == "" {
		return model.User{}, model.EmailAddress{}, fmt.Errorf("%w: user name or email address missing", model.ErrValidation)
	}
	if err := validateName(name, model.MaxNickNameLength, "user name"); err != nil {
		return model.User{}, model.EmailAddress{}, err
	}
	if err := validateName(address, model.MaxEmailLength, "email address"); err != nil {
		return model.User{}, model.EmailAddress{}, err
	}

	exists, err := a.emailStore.ExistsAddress(ctx, address)
	if err != nil {
		a.logger.Error("Account service: failed to check email address",
			"email", address,
			"error", err.Error())
		return model.User{}, model.EmailAddress{}, fmt.Errorf("failed to check email address: %w", err)
	}
	if exists {
		a.logger.Info("Account service: email address already registered", "email", address)
		return model.User{}, model.EmailAddress{}, fmt.Errorf("%w: user name or email address is already registered", model.ErrConflict)
	}

	user, err := a.newUser(name, model.UserStateNew, 0)
	if err != nil {
		return model.User{}, model.EmailAddress{}, err
	}
	if err := a.hasher.SetRandomSalt(&user.Credential); err != nil {
		return model.User{}, model.EmailAddress{}, err
	}

	user, err = a.userStore.Create(ctx, user)
	if err != nil {
		a.logger.Error("Account service: failed to create user", "name", name, "error", err.Error())
		return model.User{}, model.EmailAddress{}, fmt.Errorf("failed to create user: %w", err)
	}

	code, err := a.random.Token()
	if err != nil {
		return model.User{}, model.EmailAddress{}, err
	}
	email, err := a.emailStore.Create(ctx, model.EmailAddress{
		UserID:           user.ID,
		Address:          address,
		VerificationCode: code,
	})
	if err != nil {
		a.logger.Error("Account service: failed to create email address",
			"user_id", user.ID,
			"email", address,
			"error", err.Error())
		return model.User{}, model.EmailAddress{}, fmt.Errorf("failed to create email address: %w", err)
	}

	a.logger.Info("Account service: user created", "user_id", user.ID, "email_id", email.ID)

	return user, email, nil
}

// CreateUserWithPassword registers an account with its password already set.
// The email address is optional and verified only for confirmed accounts.
// Unlike CreateUser it does not reject addresses that are already registered.
func (a *Account) CreateUserWithPassword(ctx context.Context, params CreateUserParams) (model.User, model.EmailAddress, error) {
	a.logger.Debug("Account service: creating user with password", "name", params.Name, "state", params.State.String())

	if params.Name == "" {
		return model.User{}, model.EmailAddress{}, fmt.Errorf("%w: user name missing", model.ErrValidation)
	}
	if err := validateName(params.Name, model.MaxNickNameLength, "user name"); err != nil {
		return model.User{}, model.EmailAddress{}, err
	}
	if params.Email != "" {
		if err := validateName(params.Email, model.MaxEmailLength, "email address"); err != nil {
			return model.User{}, model.EmailAddress{}, err
		}
	}

	user, err := a.newUser(params.Name, params.State, params.Level)
	if err != nil {
		return model.User{}, model.EmailAddress{}, err
	}
	if err := a.hasher.SetPassword(&user.Credential, params.Password); err != nil {
		return model.User{}, model.EmailAddress{}, err
	}

	user, err = a.userStore.Create(ctx, user)
	if err != nil {
		a.logger.Error("Account service: failed to create user", "name", params.Name, "error", err.Error())
		return model.User{}, model.EmailAddress{}, fmt.Errorf("failed to create user: %w", err)
	}

	if params.Email == "" {
		return user, model.EmailAddress{}, nil
	}

	email, err := a.emailStore.Create(ctx, model.EmailAddress{
		UserID:   user.ID,
		Address:  params.Email,
		Verified: params.State == model.UserStateConfirmed,
	})
	if err != nil {
		a.logger.Error("Account service: failed to create email address",
			"user_id", user.ID,
			"error", err.Error())
		return model.User{}, model.EmailAddress{}, fmt.Errorf("failed to create email address: %w", err)
	}

	return user, email, nil
}

// RequestPasswordReset moves the account owning address to
// UserStatePasswordResetRequested and issues a fresh verification code.
func (a *Account) RequestPasswordReset(ctx context.Context, address string) (model.User, model.EmailAddress, error) {
	a.logger.Debug("Account service: password reset requested", "email", address)

	emails, err := a.emailStore.ListByAddress(ctx, address)
	if err != nil {
		return model.User{}, model.EmailAddress{}, fmt.Errorf("failed to find email address: %w", err)
	}
	if len(emails) > 1 {
		a.logger.Warn("Account service: email address is not unique", "email", address, "count", len(emails))
		return model.User{}, model.EmailAddress{}, fmt.Errorf("%w: email address is not unique, please contact support", model.ErrConflict)
	}
	if len(emails) == 0 {
		return model.User{}, model.EmailAddress{}, model.ErrInvalidEmail
	}

	email := emails[0]
	user, err := a.userStore.GetByID(ctx, email.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.EmailAddress{}, model.ErrInvalidEmail
	}
	if err != nil {
		return model.User{}, model.EmailAddress{}, fmt.Errorf("failed to get user: %w", err)
	}

	now := a.now()
	switch user.State {
	case model.UserStateConfirmed:
	case model.UserStatePasswordResetRequested:
		if !now.After(user.LastUpdate.Add(ResetRequestInterval)) {
			return model.User{}, model.EmailAddress{}, fmt.Errorf("%w: password reset email was already sent within the last hour", model.ErrRateLimited)
		}
	default:
		return model.User{}, model.EmailAddress{}, fmt.Errorf("%w: password reset is not possible for %s accounts", model.ErrAccountState, user.State)
	}

	code, err := a.random.Token()
	if err != nil {
		return model.User{}, model.EmailAddress{}, err
	}

	user.State = model.UserStatePasswordResetRequested
	user.LastUpdate = now
	email.VerificationCode = code

	if err := a.userStore.Update(ctx, user); err != nil {
		return model.User{}, model.EmailAddress{}, fmt.Errorf("failed to update user: %w", err)
	}
	if err := a.emailStore.Update(ctx, email); err != nil {
		return model.User{}, model.EmailAddress{}, fmt.Errorf("failed to update email address: %w", err)
	}

	a.logger.Info("Account service: password reset issued", "user_id", user.ID)

	return user, email, nil
}

// CompletePasswordReset redeems a verification code sent to address, sets
// the new password and confirms the account.
func (a *Account) CompletePasswordReset(ctx context.Context, address, code, newPassword string) (model.User, error) {
	a.logger.Debug("Account service: completing password reset", "email", address)

	if code == "" {
		return model.User{}, fmt.Errorf("%w: invalid verification code", model.ErrUnauthorized)
	}

	emails, err := a.emailStore.ListByAddress(ctx, address)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to find email address: %w", err)
	}

	var email model.EmailAddress
	for _, e := range emails {
		if subtle.ConstantTimeCompare([]byte(e.VerificationCode), []byte(code)) == 1 {
			email = e
			break
		}
	}
	if email.ID == 0 {
		return model.User{}, fmt.Errorf("%w: invalid verification code", model.ErrUnauthorized)
	}

	user, err := a.userStore.GetByID(ctx, email.UserID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	switch user.State {
	case model.UserStateNew, model.UserStatePasswordResetRequested:
	default:
		return model.User{}, fmt.Errorf("%w: no password reset pending", model.ErrAccountState)
	}

	if err := a.hasher.SetPassword(&user.Credential, newPassword); err != nil {
		return model.User{}, err
	}
	user.State = model.UserStateConfirmed
	user.InvalidLogonTries = 0
	user.LastUpdate = a.now()
	email.Verified = true
	email.VerificationCode = ""

	if err := a.userStore.Update(ctx, user); err != nil {
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	if err := a.emailStore.Update(ctx, email); err != nil {
		return model.User{}, fmt.Errorf("failed to update email address: %w", err)
	}

	a.logger.Info("Account service: password reset completed", "user_id", user.ID)

	return user, nil
}

// Login authenticates identifier as a verified email address first and as
// a nick name second. It returns the account and its verified email, which
// is the zero value when the account has none.
func (a *Account) Login(ctx context.Context, identifier, plaintext string) (model.User, model.EmailAddress, error) {
	a.logger.Debug("Account service: login attempt", "login", identifier)

	emails, err := a.emailStore.ListVerifiedByAddress(ctx, identifier)
	if err != nil {
		return model.User{}, model.EmailAddress{}, fmt.Errorf("failed to find email address: %w", err)
	}
	if len(emails) > 1 {
		a.logger.Warn("Account service: verified email address bound to several accounts",
			"login", identifier,
			"count", len(emails))
	}

	for _, email := range emails {
		user, err := a.userStore.GetByID(ctx, email.UserID)
		if errors.Is(err, model.ErrNotFound) {
			a.logger.Info("Account service: removing orphaned email address", "email_id", email.ID, "user_id", email.UserID)
			if err := a.emailStore.Delete(ctx, email.ID); err != nil && !errors.Is(err, model.ErrNotFound) {
				return model.User{}, model.EmailAddress{}, fmt.Errorf("failed to delete orphaned email address: %w", err)
			}
			continue
		}
		if err != nil {
			return model.User{}, model.EmailAddress{}, fmt.Errorf("failed to get user: %w", err)
		}

		matched, err := a.attempt(ctx, &user, plaintext)
		if err != nil {
			return model.User{}, model.EmailAddress{}, err
		}
		if !matched {
			continue
		}

		if email.VerificationCode != "" {
			email.VerificationCode = ""
			if err := a.emailStore.Update(ctx, email); err != nil {
				return model.User{}, model.EmailAddress{}, fmt.Errorf("failed to update email address: %w", err)
			}
		}
		return user, email, nil
	}

	users, err := a.userStore.ListByNickName(ctx, identifier)
	if err != nil {
		return model.User{}, model.EmailAddress{}, fmt.Errorf("failed to find user: %w", err)
	}

	for _, user := range users {
		matched, err := a.attempt(ctx, &user, plaintext)
		if err != nil {
			return model.User{}, model.EmailAddress{}, err
		}
		if !matched {
			continue
		}

		email, err := a.verifiedEmail(ctx, user.ID)
		if err != nil {
			return model.User{}, model.EmailAddress{}, err
		}
		return user, email, nil
	}

	a.logger.Info("Account service: login failed", "login", identifier)

	return model.User{}, model.EmailAddress{}, model.ErrInvalidCredentials
}

// attempt tests plaintext against user and records the outcome.
func (a *Account) attempt(ctx context.Context, user *model.User, plaintext string) (bool, error) {
	if !a.hasher.TestPassword(user.Credential, plaintext) {
		user.InvalidLogonTries++
		user.LastUpdate = a.now()
		if err := a.persistUser(ctx, *user); err != nil {
			a.logger.Error("Account service: failed to record invalid logon",
				"user_id", user.ID,
				"tries", user.InvalidLogonTries,
				"error", err.Error())
		}
		return false, nil
	}

	switch user.State {
	case model.UserStateConfirmed:
	case model.UserStatePasswordResetRequested:
		user.State = model.UserStateConfirmed
	case model.UserStateNew:
		return false, fmt.Errorf("%w: account needs to be verified prior usage", model.ErrAccountState)
	case model.UserStateDisabled:
		return false, fmt.Errorf("%w: account is disabled, please contact support", model.ErrAccountState)
	case model.UserStateDeleted:
		return false, fmt.Errorf("%w: invalid account", model.ErrAccountState)
	default:
		return false, fmt.Errorf("%w: unknown account state %d", model.ErrAccountState, user.State)
	}

	user.InvalidLogonTries = 0
	user.LastUpdate = a.now()
	if err := a.persistUser(ctx, *user); err != nil {
		return false, fmt.Errorf("failed to update user: %w", err)
	}

	a.logger.Info("Account service: login succeeded", "user_id", user.ID)

	return true, nil
}

// persistUser writes user, retrying transient store failures a bounded
// number of times.
func (a *Account) persistUser(ctx context.Context, user model.User) error {
	return retry.Do(ctx, a.backoff(), func(ctx context.Context) error {
		err := a.userStore.Update(ctx, user)
		if err == nil || errors.Is(err, model.ErrNotFound) {
			return err
		}
		return retry.RetryableError(err)
	})
}

func (a *Account) verifiedEmail(ctx context.Context, userID int64) (model.EmailAddress, error) {
	emails, err := a.emailStore.ListByUserID(ctx, userID)
	if err != nil {
		return model.EmailAddress{}, fmt.Errorf("failed to list email addresses: %w", err)
	}
	for _, e := range emails {
		if e.Verified {
			return e, nil
		}
	}
	return model.EmailAddress{}, nil
}

// ChangePassword replaces the password of userID after verifying the old one.
func (a *Account) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := a.hasher.ChangePassword(&user.Credential, oldPassword, newPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			a.logger.Info("Account service: password change rejected", "user_id", userID)
			return fmt.Errorf("%w: old password does not match", model.ErrUnauthorized)
		}
		return err
	}

	user.LastUpdate = a.now()
	if err := a.userStore.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// SetPassword replaces the password of userID unconditionally.
func (a *Account) SetPassword(ctx context.Context, userID int64, newPassword string) error {
	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := a.hasher.SetPassword(&user.Credential, newPassword); err != nil {
		return err
	}

	user.LastUpdate = a.now()
	if err := a.userStore.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// SetState moves userID to state. Used for administrative transitions
// such as disabling or deleting an account.
func (a *Account) SetState(ctx context.Context, userID int64, state model.UserState) (model.User, error) {
	if state < model.UserStateNew || state > model.UserStateDeleted {
		return model.User{}, fmt.Errorf("%w: unknown account state %d", model.ErrValidation, state)
	}

	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	a.logger.Info("Account service: changing account state",
		"user_id", userID,
		"from", user.State.String(),
		"to", state.String())

	user.State = state
	user.LastUpdate = a.now()
	if err := a.userStore.Update(ctx, user); err != nil {
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Update stores both records and stamps the user's LastUpdate.
func (a *Account) Update(ctx context.Context, user model.User, email model.EmailAddress) (model.User, model.EmailAddress, error) {
	if user.ID <= 0 {
		return model.User{}, model.EmailAddress{}, fmt.Errorf("%w: invalid user id", model.ErrValidation)
	}
	if email.ID <= 0 {
		return model.User{}, model.EmailAddress{}, fmt.Errorf("%w: invalid email id", model.ErrValidation)
	}

	user.LastUpdate = a.now()
	if err := a.userStore.Update(ctx, user); err != nil {
		return model.User{}, model.EmailAddress{}, fmt.Errorf("failed to update user: %w", err)
	}
	if err := a.emailStore.Update(ctx, email); err != nil {
		return model.User{}, model.EmailAddress{}, fmt.Errorf("failed to update email address: %w", err)
	}
	return user, email, nil
}

// TryAddEmail stores email unless its address is already registered.
func (a *Account) TryAddEmail(ctx context.Context, email model.EmailAddress) (model.EmailAddress, bool, error) {
	if err := validateName(email.Address, model.MaxEmailLength, "email address"); err != nil {
		return model.EmailAddress{}, false, err
	}

	exists, err := a.emailStore.ExistsAddress(ctx, email.Address)
	if err != nil {
		return model.EmailAddress{}, false, fmt.Errorf("failed to check email address: %w", err)
	}
	if exists {
		return model.EmailAddress{}, false, nil
	}

	email, err = a.emailStore.Create(ctx, email)
	if err != nil {
		return model.EmailAddress{}, false, fmt.Errorf("failed to create email address: %w", err)
	}
	return email, true, nil
}

func (a *Account) GetUser(ctx context.Context, userID int64) (model.User, error) {
	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (a *Account) newUser(name string, state model.UserState, level int) (model.User, error) {
	avatarID, err := a.random.Int63()
	if err != nil {
		return model.User{}, err
	}
	color, err := a.random.Color()
	if err != nil {
		return model.User{}, err
	}

	return model.User{
		NickName:   name,
		AvatarID:   avatarID,
		Color:      color,
		AuthLevel:  level,
		State:      state,
		LastUpdate: a.now(),
	}, nil
}
