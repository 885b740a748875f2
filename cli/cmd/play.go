package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BioHazard786/diceroom/cli/internal/config"
	"github.com/BioHazard786/diceroom/cli/internal/session"
	"github.com/BioHazard786/diceroom/cli/internal/ui"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

const joinTimeout = 10 * time.Second

var (
	flagServer string
	flagName   string
)

var playCmd = &cobra.Command{
	Use:     "play",
	Aliases: []string{"p"},
	Short:   "Join the dice room and play",
	Long: `Join the dice room and play against the other player.

Examples:
  diceroom play --name Alice
  diceroom play --name Bob --server wss://dice.example.com/ws
  DICEROOM_NAME=Carol diceroom play`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return play(cmd.Context())
	},
}

func play(ctx context.Context) error {
	cfg, err := config.Load(config.Options{
		Server: flagServer,
		Name:   flagName,
	})
	if err != nil {
		return session.NewError("load config", err)
	}

	client, first, err := join(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Println(ui.WelcomeView(cfg.Name, cfg.ServerURL))

	tally, err := ui.RunGame(ui.GameOptions{
		Name:     cfg.Name,
		Server:   cfg.ServerURL,
		First:    first,
		Incoming: client.Incoming(),
		Send:     client.Send,
	})
	client.Close()
	if err != nil {
		return err
	}

	ui.PrintInfof("Left the room after %d rounds", tally.Rounds)
	ui.RenderSessionSummary(tally)
	if !reportClose(client.CloseInfo()) {
		ui.PrintSuccessf("Thanks for playing, %s!", cfg.Name)
	}
	return nil
}

func join(ctx context.Context, cfg *config.Config) (*session.Client, string, error) {
	sp := ui.NewConnectionSpinner(fmt.Sprintf("Connecting to %s...", cfg.ServerURL))
	sp.Start()

	ctx, cancel := context.WithTimeout(ctx, joinTimeout)
	defer cancel()

	client := session.NewClient(cfg.ServerURL, cfg.Name)
	if err := client.Connect(ctx); err != nil {
		sp.Error("Could not reach the dice server")
		return nil, "", err
	}

	first, err := client.Join(ctx)
	if err != nil {
		sp.Error("Could not join the room")
		client.Close()
		return nil, "", err
	}

	sp.Success(fmt.Sprintf("Joined as %s", cfg.Name))
	slog.Debug("Joined room", "server", cfg.ServerURL, "name", cfg.Name)
	return client, first, nil
}

// reportClose explains a session the server ended with anything other than
// a normal closure, and reports whether it did.
func reportClose(info *session.CloseInfo) bool {
	if info == nil || info.Code == websocket.CloseNormalClosure {
		return false
	}
	if info.Text != "" {
		ui.PrintWarningf("Disconnected by server: %s (%d)", info.Text, info.Code)
		return true
	}
	ui.PrintWarningf("Disconnected by server (%d)", info.Code)
	return true
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringVarP(&flagServer, "server", "s", "", "Dice server URL (default "+config.DefaultServer+")")
	playCmd.Flags().StringVarP(&flagName, "name", "n", "", "Player name sent to the server")
}
