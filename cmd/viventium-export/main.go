// Command viventium-export fetches every active employee profile from the
// Viventium HCM API and writes them as JSON to stdout or a file. Session
// credentials (XSRF token and cookies) are captured from an authenticated
// browser session and passed via flags or VIVENTIUM_* environment variables.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Integuru-AI/Viventium-Unofficial-API/pkg/client"
	"github.com/Integuru-AI/Viventium-Unofficial-API/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "viventium-export",
	Short: "Export Viventium employee profiles",
	Long: `Export every active employee profile from the Viventium HCM API.

Credentials come from an authenticated browser session: the XSRF token and
the session cookies. Each flag can also be set through the environment with
a VIVENTIUM_ prefix (--cookie-header becomes VIVENTIUM_COOKIE_HEADER).`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.Flags()
	flags.String("token", "", "XSRF token from the browser session")
	flags.StringArray("cookie", nil, "session cookie as name=value (repeatable)")
	flags.String("cookie-header", "", "pre-formatted Cookie header value (overrides --cookie)")
	flags.String("base-url", client.DefaultBaseURL, "Viventium API base URL")
	flags.String("output", "", "output file path (default: stdout)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Bool("pretty-log", false, "human-readable log output instead of JSON")

	viper.SetEnvPrefix("VIVENTIUM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	cobra.CheckErr(viper.BindPFlags(flags))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(viper.GetString("log-level")),
		Pretty: viper.GetBool("pretty-log"),
		Output: os.Stderr,
	})
	logger = logger.With().Str("component", "viventium-export").Logger()

	token := viper.GetString("token")
	if token == "" {
		return errors.New("an XSRF token is required (--token or VIVENTIUM_TOKEN)")
	}

	cookies, err := resolveCookies(viper.GetString("cookie-header"), viper.GetStringSlice("cookie"))
	if err != nil {
		return err
	}

	c, err := client.New(client.Config{BaseURL: viper.GetString("base-url")})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	employees, err := c.FetchEmployeeProfiles(ctx, token, cookies)
	if err != nil {
		var authErr *client.AuthError
		if errors.As(err, &authErr) {
			return fmt.Errorf("viventium rejected the session credentials, re-authenticate and retry: %w", err)
		}
		return fmt.Errorf("export failed: %w", err)
	}

	output := viper.GetString("output")
	dest := output
	if dest == "" {
		dest = "stdout"
	}
	logger.Info().
		Int("employees", len(employees)).
		Str("output", dest).
		Msg("Export complete")

	return writeRecords(output, employees)
}

// resolveCookies builds the session cookie set from the CLI inputs. A
// pre-formatted header wins over individual pairs.
func resolveCookies(header string, pairs []string) (client.Cookies, error) {
	if header != "" {
		return client.CookieString(header), nil
	}
	if len(pairs) == 0 {
		return nil, errors.New("session cookies are required (--cookie, --cookie-header, or VIVENTIUM_COOKIE_HEADER)")
	}

	cookies := client.CookieMap{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed cookie %q, want name=value", pair)
		}
		cookies[name] = value
	}
	return cookies, nil
}

// writeRecords writes the records as indented JSON, to stdout when path is
// empty. An empty record set is written as [].
func writeRecords(path string, employees []client.EmployeeProfile) error {
	if employees == nil {
		employees = []client.EmployeeProfile{}
	}

	data, err := json.MarshalIndent(employees, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
