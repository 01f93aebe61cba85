package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/licensekeeper/internal/certificate"
	"github.com/dtroode/licensekeeper/internal/config"
	"github.com/dtroode/licensekeeper/internal/logger"
	"github.com/dtroode/licensekeeper/internal/model"
	"github.com/dtroode/licensekeeper/internal/otp"
	"github.com/dtroode/licensekeeper/internal/password"
	"github.com/dtroode/licensekeeper/internal/random"
	"github.com/dtroode/licensekeeper/internal/repository/memory"
	"github.com/dtroode/licensekeeper/internal/repository/postgres"
	"github.com/dtroode/licensekeeper/internal/service"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

// stores holds the record stores of the selected backend.
type stores struct {
	users    model.UserStore
	emails   model.EmailStore
	licenses model.LicenseStore
	slots    model.SlotStore
	members  model.GroupMemberStore
	sessions model.SessionStore
	close    func() error
}

func main() {
	adminName := flag.String("create-admin", "", "create a confirmed account with this nick name and exit")
	adminEmail := flag.String("email", "", "email address for -create-admin")
	adminPassword := flag.String("password", "", "password for -create-admin")
	otpAccount := flag.String("otp-account", "", "provision a one-time password key for this account and exit")
	otpQR := flag.String("qr", "", "write the provisioned key as a PNG QR code to this file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	used, closeUsed, err := openUsedCodes(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize used code store", "error", err)
	}
	defer closeUsed()

	verifier := otp.NewVerifier(otp.Config{
		Interval:    cfg.OTP.Interval,
		DriftPast:   cfg.OTP.DriftPast,
		DriftFuture: cfg.OTP.DriftFuture,
	}, used)

	if *otpAccount != "" {
		if err := provisionOTP(verifier, cfg.OTP.Issuer, *otpAccount, *otpQR); err != nil {
			logger.Fatal("failed to provision otp key", "account", *otpAccount, "error", err)
		}
		return
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", "backend", cfg.Storage.Backend, "error", err)
	}
	defer st.close()

	if *adminName != "" {
		hasher := password.NewHasher(password.Config{Iterations: cfg.KDF.Iterations}, rand.Reader)
		account := service.NewAccount(st.users, st.emails, hasher, random.Default(), logger)
		user, _, err := account.CreateUserWithPassword(ctx, service.CreateUserParams{
			Name:     *adminName,
			Email:    *adminEmail,
			Password: *adminPassword,
			State:    model.UserStateConfirmed,
			Level:    adminAuthLevel,
		})
		if err != nil {
			logger.Fatal("failed to create admin account", "name", *adminName, "error", err)
		}
		logger.Info("admin account created", "user_id", user.ID, "name", user.NickName)
		return
	}

	licenses := service.NewLicense(st.licenses, st.slots, st.members, certificate.NewIssuer(cfg.Cert.Secret), logger)
	sessions := service.NewSessions(st.sessions, logger)
	reaper := service.NewReaper(licenses, sessions, verifier, cfg.Reaper.Interval, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting reaper", "interval", cfg.Reaper.Interval.String(), "backend", cfg.Storage.Backend)
		reaper.Run(ctx)
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	wg.Wait()
	logger.Info("shutdown complete")
}

const adminAuthLevel = 100

func openStores(ctx context.Context, cfg *config.Config) (stores, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := postgres.NewConection(ctx, cfg.Database.DSN)
		if err != nil {
			return stores{}, err
		}
		s := postgres.NewStore(db)
		return stores{
			users:    s.Users,
			emails:   s.Emails,
			licenses: s.Licenses,
			slots:    s.Slots,
			members:  s.GroupMembers,
			sessions: s.Sessions,
			close:    db.Close,
		}, nil
	default:
		s := memory.NewStore()
		return stores{
			users:    s.Users,
			emails:   s.Emails,
			licenses: s.Licenses,
			slots:    s.Slots,
			members:  s.GroupMembers,
			sessions: s.Sessions,
			close:    func() error { return nil },
		}, nil
	}
}

func openUsedCodes(ctx context.Context, cfg *config.Config) (otp.UsedCodeStore, func(), error) {
	if cfg.Redis.Addr == "" {
		return otp.NewMemoryUsedCodes(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
	}
	return otp.NewRedisUsedCodes(client, ""), func() { _ = client.Close() }, nil
}

func provisionOTP(verifier *otp.Verifier, issuer, account, qrPath string) error {
	key, err := verifier.GenerateKey(issuer, account, rand.Reader)
	if err != nil {
		return err
	}

	fmt.Printf("secret: %s\nurl: %s\n", key.Secret(), key.URL())

	if qrPath == "" {
		return nil
	}
	png, err := key.QRCode(256)
	if err != nil {
		return err
	}
	if err := os.WriteFile(qrPath, png, 0o600); err != nil {
		return fmt.Errorf("failed to write qr code: %w", err)
	}
	return nil
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
