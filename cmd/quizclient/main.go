package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quizduel/internal/domain"
	"quizduel/internal/pkg/logger"
	"quizduel/internal/poller"
)

const usage = `usage: quizclient <command> [args]

commands:
  watch                                  poll the inbox and print new notifications
  challenge <userId> <category> <level>  invite a user and play once they accept
  accept <challengeId>                   accept an invite and play
  reject <challengeId>                   decline an invite
  dismiss <notificationId>               delete a notification
`

type app struct {
	cfg    *Config
	client *poller.Client
	me     *domain.User
	log    *logrus.Entry
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	v, err := LoadConfig("quizclient")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg, err := ParseConfig(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := connect(ctx, cfg, logger.NewWithOutput("quizclient", cfg.Log.Level, os.Stderr))
	if err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		os.Exit(1)
	}

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func connect(ctx context.Context, cfg *Config, log *logrus.Entry) (*app, error) {
	client := poller.NewClient(cfg.Server.URL, cfg.Auth.Token, &http.Client{Timeout: cfg.Server.Timeout})

	var me *domain.User
	var err error
	if cfg.Auth.Token == "" {
		if cfg.Auth.Email == "" || cfg.Auth.Password == "" {
			return nil, errors.New("set auth.token or auth.email and auth.password")
		}
		client, me, err = client.Login(ctx, cfg.Auth.Email, cfg.Auth.Password)
	} else {
		me, err = client.Me(ctx)
	}
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, client: client, me: me, log: log}, nil
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "watch":
		return a.watch(ctx)
	case "challenge":
		if len(args) != 3 {
			return errors.New("expected <userId> <category> <difficulty>")
		}
		return a.challenge(ctx, args[0], args[1], args[2])
	case "accept":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		return a.play(ctx, id, poller.RoleChallenged)
	case "reject":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		if err := a.client.RejectChallenge(ctx, id); err != nil {
			return err
		}
		fmt.Println("Challenge declined")
		return nil
	case "dismiss":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		return poller.Dismiss(ctx, a.client, id)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func parseID(args []string) (uuid.UUID, error) {
	if len(args) != 1 {
		return uuid.Nil, errors.New("expected exactly one id")
	}
	return uuid.Parse(args[0])
}

func (a *app) watch(ctx context.Context) error {
	p := poller.NewInboxPoller(a.client, poller.EffectHandlerFunc(printEffect), poller.InboxOptions{
		Interval: a.cfg.Poll.InboxInterval,
		OnSessionInvalid: func() {
			fmt.Fprintln(os.Stderr, "Session expired, please log in again")
		},
	}, a.log)

	fmt.Printf("Watching notifications for %s\n", a.me.Username)
	return p.Run(ctx)
}

func printEffect(_ context.Context, e poller.Effect) error {
	from := e.FromUsername()
	switch e.Kind {
	case poller.ShowChallengeInvite:
		category := ""
		if e.Challenge != nil {
			category = e.Challenge.Category
		}
		fmt.Printf("New challenge! %s challenged you to a %s quiz\n", from, category)
		if e.Challenge != nil {
			fmt.Printf("  quizclient accept %s | quizclient reject %s\n", e.Challenge.ChallengeID, e.Challenge.ChallengeID)
		}
	case poller.ShowFriendRequest:
		fmt.Printf("Friend request from %s\n", from)
	case poller.ShowChallengeAccepted:
		fmt.Printf("%s accepted your challenge!\n", from)
	case poller.ShowChallengeRejected:
		fmt.Printf("%s rejected your challenge\n", from)
	case poller.ShowChallengeCompleted:
		fmt.Printf("%s completed your challenge!\n", from)
	}
	return nil
}

func (a *app) challenge(ctx context.Context, userID, category, difficulty string) error {
	challenged, err := uuid.Parse(userID)
	if err != nil {
		return err
	}

	ch, err := a.client.CreateChallenge(ctx, domain.CreateChallengeInput{
		ChallengedID: challenged,
		Category:     category,
		Difficulty:   difficulty,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Challenge %s sent, waiting for opponent...\n", ch.ID)
	return a.play(ctx, ch.ID, poller.RoleChallenger)
}

func (a *app) play(ctx context.Context, id uuid.UUID, role poller.Role) error {
	strategy := poller.StrategyRetry
	if a.cfg.Lobby.Strategy == "fixed" {
		strategy = poller.StrategyFixedDelay
	}
	lobby := poller.NewLobby(a.client, poller.LobbyOptions{
		Strategy:       strategy,
		StatusInterval: a.cfg.Poll.StatusInterval,
		SettleDelay:    a.cfg.Lobby.SettleDelay,
		MaxWait:        a.cfg.Lobby.MaxWait,
	}, a.log)

	ready, err := lobby.Enter(ctx, id, role)
	if errors.Is(err, poller.ErrDeclined) {
		fmt.Println("Your opponent declined the challenge")
		return nil
	}
	if err != nil {
		return err
	}

	score, err := playRound(ready.Questions, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("\nYou scored %d/%d, waiting for your opponent...\n", score, len(ready.Questions))

	result, err := poller.NewResults(a.client, a.cfg.Poll.StatusInterval, a.log).Submit(ctx, id, a.me.ID, score)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case poller.OutcomeWin:
		fmt.Printf("You won %d to %d!\n", result.MyScore, result.OpponentScore)
	case poller.OutcomeLoss:
		fmt.Printf("You lost %d to %d\n", result.MyScore, result.OpponentScore)
	default:
		fmt.Printf("It's a draw at %d\n", result.MyScore)
	}
	return nil
}
