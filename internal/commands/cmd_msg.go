package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"schoolconnect/internal/core/chat"
	"schoolconnect/internal/core/directory"
	"schoolconnect/internal/core/session"
	"schoolconnect/internal/core/validate"
	"schoolconnect/internal/printer"
	"schoolconnect/internal/store/jsonfile"
)

type MsgCmd struct {
	flags *Flags

	limit  int
	listen bool
}

// NewMsgCmd creates a new msg command
func NewMsgCmd(flags *Flags) *MsgCmd {
	return &MsgCmd{flags: flags}
}

// Register adds the msg command tree to the application
func (cmd *MsgCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "msg",
		Usage:     "Send and read messages",
		UsageText: "schoolconnect msg <command>",
		Commands: []*cli.Command{
			{
				Name:        "send",
				Usage:       "Send a message",
				UsageText:   `schoolconnect msg send "running ten minutes late"`,
				Description: "Inserts a message into the conversation. A message that cannot be delivered is kept in a local outbox for 'msg retry'.",
				Action:      cmd.runSend,
			},
			{
				Name:      "history",
				Usage:     "Print the conversation",
				UsageText: "schoolconnect msg history [--limit n] [--listen]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "limit",
						Aliases:     []string{"n"},
						Usage:       "print only the most recent n messages (0 = all)",
						Destination: &cmd.limit,
					},
					&cli.BoolFlag{
						Name:        "listen",
						Aliases:     []string{"f"},
						Usage:       "stay subscribed to the change feed and print new messages",
						Destination: &cmd.listen,
					},
				},
				Action: cmd.runHistory,
			},
			{
				Name:        "retry",
				Usage:       "Resend messages stuck in the outbox",
				UsageText:   "schoolconnect msg retry",
				Description: "Attempts to deliver every message saved by a failed send. Delivered messages are removed from the outbox.",
				Action:      cmd.runRetry,
			},
		},
	})

	return app
}

// requireSession returns the stored session or a friendly error.
func (cmd *MsgCmd) requireSession() (*session.Session, error) {
	if cmd.flags.Session == nil {
		return nil, fmt.Errorf("not logged in; run 'schoolconnect login' first")
	}
	return cmd.flags.Session, nil
}

func (cmd *MsgCmd) runSend(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	sess, err := cmd.requireSession()
	if err != nil {
		return err
	}

	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if err := validate.MessageText(text); err != nil {
		return err
	}

	token := uuid.NewString()
	row, err := cmd.flags.Client.InsertMessage(ctx, text, sess.UserID, token)
	if err != nil {
		saveErr := cmd.flags.Outbox.Add(ctx, jsonfile.OutboxEntry{
			ClientToken: token,
			Text:        text,
			SenderID:    sess.UserID,
			CreatedAt:   time.Now().UTC(),
		})
		if saveErr != nil {
			log.Warn().Err(saveErr).Msg("outbox write failed")
			return fmt.Errorf("send message: %w", err)
		}

		p.Warnf("Message not delivered, saved to outbox. Run 'schoolconnect msg retry'.")
		return fmt.Errorf("send message: %w", err)
	}

	p.Successf("Sent (%s)", row.ID)
	return nil
}

func (cmd *MsgCmd) runHistory(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	sess, err := cmd.requireSession()
	if err != nil {
		return err
	}

	users, err := cmd.flags.Client.ListUsers(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("user directory unavailable")
	}
	dir := directory.New(users)

	rows, err := cmd.flags.Client.ListMessages(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	feed := chat.NewFeed(log.With().Str("component", "feed-reconciler").Logger())
	if err := feed.LoadHistory(rows); err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	msgs := feed.Messages()
	if cmd.limit > 0 && cmd.limit < len(msgs) {
		msgs = msgs[len(msgs)-cmd.limit:]
	}
	for _, m := range msgs {
		printMessage(p, dir, sess.UserID, m)
	}

	if !cmd.listen {
		return nil
	}

	return cmd.followFeed(ctx, p, dir, sess, feed)
}

// followFeed prints change feed inserts until interrupted. The
// reconciler drops redeliveries so each message prints once.
func (cmd *MsgCmd) followFeed(ctx context.Context, p *printer.Printer, dir *directory.Directory, sess *session.Session, feed *chat.Feed) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	sub, err := cmd.flags.Client.SubscribeFeed(ctx)
	if err != nil {
		return fmt.Errorf("subscribe feed: %w", err)
	}
	defer sub.Close()

	p.Infof("Listening for new messages (ctrl+c to stop)")

	for {
		select {
		case <-ctx.Done():
			return nil
		case row, ok := <-sub.Events():
			if !ok {
				return nil
			}
			before := feed.Len()
			feed.ApplyInsert(row)
			if feed.Len() == before {
				continue
			}
			msgs := feed.Messages()
			printMessage(p, dir, sess.UserID, msgs[len(msgs)-1])
		}
	}
}

func (cmd *MsgCmd) runRetry(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	if _, err := cmd.requireSession(); err != nil {
		return err
	}

	entries, err := cmd.flags.Outbox.List(ctx)
	if err != nil {
		return fmt.Errorf("read outbox: %w", err)
	}
	if len(entries) == 0 {
		p.Infof("Outbox is empty")
		return nil
	}

	var failed int
	for _, entry := range entries {
		// Same client token as the original attempt, so a send that
		// reached the store after a timeout is not duplicated.
		_, err := cmd.flags.Client.InsertMessage(ctx, entry.Text, entry.SenderID, entry.ClientToken)
		if err != nil {
			failed++
			p.Errorf("Not delivered: %q (%s)", entry.Text, err)
			continue
		}

		if err := cmd.flags.Outbox.Remove(ctx, entry.ClientToken); err != nil {
			log.Warn().Err(err).Msg("outbox remove failed")
		}
		p.Successf("Delivered: %q", entry.Text)
	}

	if failed > 0 {
		return fmt.Errorf("%d message(s) still undelivered", failed)
	}
	return nil
}

// printMessage writes one conversation line with sender and local time.
func printMessage(p *printer.Printer, dir *directory.Directory, selfID string, m chat.Message) {
	sender := "unknown"
	if m.SenderID == selfID {
		sender = "you"
	} else if u, ok := dir.Lookup(m.SenderID); ok {
		sender = u.Name
	}

	p.Printf("%s  %-12s %s", m.CreatedAt.Local().Format("Jan 02 15:04"), sender, m.Text)
}
