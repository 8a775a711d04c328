package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"metrodoc/internal/client"
	"metrodoc/internal/gateway"
	"metrodoc/internal/gateway/httpgw"
	"metrodoc/internal/gateway/memory"
	"metrodoc/internal/logging"
	"metrodoc/internal/model"
)

const (
	keyAPIURL   = "api_url"
	keyToken    = "token"
	keyEmail    = "email"
	keyPassword = "password"
	keyOffline  = "offline"
	keyLogLevel = "log_level"
	keyLocale   = "locale"
	keyWindow   = "notification_window"
	keyTimeout  = "timeout"
)

// Offline runs sign in with the seeded demo account unless credentials are given.
const (
	offlineEmail    = "demo@metrodoc.ai"
	offlinePassword = "demo123"
)

type app struct {
	v   *viper.Viper
	cfg string
	log *zap.Logger

	// gw overrides the gateway built from configuration.
	gw gateway.Gateway
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("METRODOC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	v.SetDefault(keyAPIURL, "http://localhost:8080/api")
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyLocale, "en")
	v.SetDefault(keyWindow, model.DefaultNotificationWindow)
	v.SetDefault(keyTimeout, 30*time.Second)
	return v
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&app{v: newViper()})
}

func newRootCmdWith(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "metrodoc",
		Short:        "Browse and manage metro documents and notifications",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg, "config", "", "Path to configuration file")
	flags.String("api-url", a.v.GetString(keyAPIURL), "Base URL of the REST API")
	flags.String("token", "", "Bearer token from a previous login")
	flags.String("email", "", "Account email")
	flags.String("password", "", "Account password")
	flags.Bool("offline", false, "Use the in-process seeded backend")
	flags.String("log-level", a.v.GetString(keyLogLevel), "Log level (debug, info, warn, error)")
	flags.String("locale", a.v.GetString(keyLocale), "Collation locale for title sorting")
	flags.Duration("notification-window", a.v.GetDuration(keyWindow), "Age limit of current notifications")
	flags.Duration("timeout", a.v.GetDuration(keyTimeout), "HTTP request timeout")

	bindFlag(a.v, root, keyAPIURL, "api-url")
	bindFlag(a.v, root, keyToken, "token")
	bindFlag(a.v, root, keyEmail, "email")
	bindFlag(a.v, root, keyPassword, "password")
	bindFlag(a.v, root, keyOffline, "offline")
	bindFlag(a.v, root, keyLogLevel, "log-level")
	bindFlag(a.v, root, keyLocale, "locale")
	bindFlag(a.v, root, keyWindow, "notification-window")
	bindFlag(a.v, root, keyTimeout, "timeout")

	root.AddCommand(
		newLoginCmd(a),
		newWhoAmICmd(a),
		newDocumentsCmd(a),
		newNotificationsCmd(a),
	)
	return root
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func (a *app) initConfig(cmd *cobra.Command) error {
	if a.cfg != "" {
		a.v.SetConfigFile(a.cfg)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}
	a.log = logging.NewWithWriter(cmd.ErrOrStderr(), a.v.GetString(keyLogLevel), time.Local)
	return nil
}

func (a *app) gateway() (gateway.Gateway, error) {
	if a.gw != nil {
		return a.gw, nil
	}
	if a.v.GetBool(keyOffline) {
		return memory.New(memory.WithWindow(a.v.GetDuration(keyWindow)))
	}
	return httpgw.New(a.v.GetString(keyAPIURL), httpgw.WithTimeout(a.v.GetDuration(keyTimeout)))
}

func (a *app) newWorkspace() (*client.Workspace, error) {
	gw, err := a.gateway()
	if err != nil {
		return nil, err
	}
	tag, err := language.Parse(a.v.GetString(keyLocale))
	if err != nil {
		return nil, fmt.Errorf("locale: %w", err)
	}
	return client.New(gw,
		client.WithLogger(a.log),
		client.WithLocale(tag),
		client.WithNotificationWindow(a.v.GetDuration(keyWindow)),
	), nil
}

// workspace returns a signed-in workspace. A stored token wins over credentials.
func (a *app) workspace(cmd *cobra.Command) (*client.Workspace, error) {
	ws, err := a.newWorkspace()
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()

	if token := a.v.GetString(keyToken); token != "" {
		if _, err := ws.ResumeSession(ctx, token); err != nil {
			return nil, fmt.Errorf("resume session: %w", err)
		}
		return ws, nil
	}

	email, password := a.v.GetString(keyEmail), a.v.GetString(keyPassword)
	if email == "" && a.v.GetBool(keyOffline) {
		email, password = offlineEmail, offlinePassword
	}
	if email == "" {
		return nil, errors.New("not signed in: set METRODOC_TOKEN or pass --email and --password")
	}
	if _, err := ws.Login(ctx, email, password); err != nil {
		return nil, err
	}
	return ws, nil
}

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in and print a bearer token for METRODOC_TOKEN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, password := a.v.GetString(keyEmail), a.v.GetString(keyPassword)
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			ws, err := a.newWorkspace()
			if err != nil {
				return err
			}
			u, err := ws.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			token, err := ws.Session().Token()
			if err != nil {
				return err
			}
			a.log.Info("signed in", zap.String("user_id", u.ID), zap.Time("expires_at", ws.Session().ExpiresAt()))
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func newWhoAmICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace(cmd)
			if err != nil {
				return err
			}
			u, _ := ws.Session().User()
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
}
