// cmd/tenderec/deck.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tenderec/internal/deck"
	"tenderec/internal/models"
	"tenderec/internal/swipe"

	"github.com/spf13/cobra"
)

func deckCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Swipe through recommendations one tier at a time",
	}
	cmd.AddCommand(deckPlayCmd(c))
	cmd.AddCommand(deckResetCmd(c))
	return cmd
}

func deckResetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget every swipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			if err := a.swipes.Clear(cmd.Context()); err != nil {
				return err
			}
			a.printf("Swipes cleared.\n")
			return nil
		},
	}
}

func deckPlayCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Start an interactive swipe session",
		Long: `Start an interactive swipe session.

Commands:
  r, right        like the top tender
  l, left         reject the top tender, then type a reason (empty line skips)
  drag <dx>       drag the top card by dx and release
  next            move to the next tier once this one is done
  reset           start over from the first tier
  liked           list liked tenders
  help            show this help
  q, quit         leave`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			d := deck.New(a.service, a.swipes, c.companyName(), a.obs, a.log)
			s := &session{app: a, deck: d, scanner: bufio.NewScanner(a.in)}
			return s.run(cmd.Context())
		},
	}
}

type deckAction int

const (
	actionNone deckAction = iota
	actionRight
	actionLeft
	actionDrag
	actionNext
	actionReset
	actionLiked
	actionHelp
	actionQuit
)

type deckCommand struct {
	action deckAction
	dx     float64
}

// parseDeckCommand reads one REPL line.
func parseDeckCommand(line string) (deckCommand, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return deckCommand{action: actionNone}, nil
	}

	switch fields[0] {
	case "r", "right", "like":
		return deckCommand{action: actionRight}, nil
	case "l", "left", "reject":
		return deckCommand{action: actionLeft}, nil
	case "drag", "d":
		if len(fields) != 2 {
			return deckCommand{}, errors.New("usage: drag <dx>")
		}
		dx, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return deckCommand{}, fmt.Errorf("invalid drag distance %q", fields[1])
		}
		return deckCommand{action: actionDrag, dx: dx}, nil
	case "next", "n":
		return deckCommand{action: actionNext}, nil
	case "reset":
		return deckCommand{action: actionReset}, nil
	case "liked":
		return deckCommand{action: actionLiked}, nil
	case "help", "h", "?":
		return deckCommand{action: actionHelp}, nil
	case "q", "quit", "exit":
		return deckCommand{action: actionQuit}, nil
	default:
		return deckCommand{}, fmt.Errorf("unknown command %q, type help", fields[0])
	}
}

type session struct {
	app     *app
	deck    *deck.Deck
	scanner *bufio.Scanner
}

func (s *session) run(ctx context.Context) error {
	if err := s.deck.Load(ctx); err != nil {
		return s.app.report("deck", err)
	}
	s.render()

	for {
		s.app.printf("> ")
		if !s.scanner.Scan() {
			s.app.printf("\n")
			return s.scanner.Err()
		}
		cmd, err := parseDeckCommand(s.scanner.Text())
		if err != nil {
			s.app.printf("%s\n", err)
			continue
		}
		if cmd.action == actionQuit {
			return nil
		}
		if err := s.apply(ctx, cmd); err != nil {
			if reported := s.app.report("deck", err); reported != nil {
				s.app.printf("%s\n", reported)
			}
		}
		if cmd.action != actionNone && cmd.action != actionHelp && cmd.action != actionLiked {
			s.render()
		}
	}
}

func (s *session) apply(ctx context.Context, cmd deckCommand) error {
	switch cmd.action {
	case actionRight:
		return s.decide(ctx, s.deck.Swipe(ctx, models.SwipeRight))
	case actionLeft:
		return s.decide(ctx, s.deck.Swipe(ctx, models.SwipeLeft))
	case actionDrag:
		return s.drag(ctx, cmd.dx)
	case actionNext:
		err := s.deck.AdvanceTier(ctx)
		if errors.Is(err, deck.ErrTierNotExhausted) {
			s.app.printf("Finish this tier first.\n")
			return nil
		}
		if errors.Is(err, deck.ErrLastTier) {
			s.app.printf("This is the last tier. Type reset to start over.\n")
			return nil
		}
		return err
	case actionReset:
		return s.deck.StartOver(ctx)
	case actionLiked:
		printLiked(s.app, s.deck.Liked())
	case actionHelp:
		s.app.printf("r/right, l/left, drag <dx>, next, reset, liked, q/quit\n")
	}
	return nil
}

// decide handles the result of a swipe and asks for a reason after a rejection.
func (s *session) decide(ctx context.Context, err error) error {
	if errors.Is(err, deck.ErrDeckEmpty) {
		s.app.printf("No tender left in this tier.\n")
		return nil
	}
	if err != nil {
		return err
	}
	pending, ok := s.deck.Pending()
	if !ok {
		return nil
	}

	s.app.printf("Why is %q not a fit? (empty line to skip)\n? ", pending.TenderName)
	comment := ""
	if s.scanner.Scan() {
		comment = s.scanner.Text()
	}
	return s.deck.SubmitRejection(ctx, comment)
}

// drag moves the top card through the gesture and waits for the exit animation.
func (s *session) drag(ctx context.Context, dx float64) error {
	if _, ok := s.deck.Top(); !ok {
		s.app.printf("No tender left in this tier.\n")
		return nil
	}
	results := make(chan error, 1)
	card := s.deck.NewCard(s.app.swipe, func(err error) { results <- err })

	state := card.Drag(1, dx, 0)
	if state.Phase == swipe.Idle {
		s.app.printf("Snapped back.\n")
		return nil
	}

	select {
	case err := <-results:
		return s.decide(ctx, err)
	case <-ctx.Done():
		card.Stop()
		return ctx.Err()
	case <-time.After(s.app.swipe.ExitDelay + 5*time.Second):
		card.Stop()
		return errors.New("swipe did not complete")
	}
}

func (s *session) render() {
	d := s.deck
	tier := d.Tier()
	unswiped, total := d.Remaining()
	s.app.printf("\n[%s] %d of %d left\n", tier.Label(), unswiped, total)

	visible := d.Visible()
	if len(visible) == 0 {
		if next, ok := d.NextTier(); ok {
			s.app.printf("Tier done. Type next to see %s tenders.\n", strings.ToLower(next.Label()))
		} else {
			s.app.printf("All tiers done. Type reset to start over, or liked to review.\n")
		}
		return
	}

	top := visible[0]
	s.app.printf("  %s\n", top.TenderName)
	s.app.printf("  %s\n", top.Organization)
	s.app.printf("  Name:     %s  %s\n", top.NameMatch.Label(), top.NameReason)
	s.app.printf("  Industry: %s  %s\n", top.IndustryMatch.Label(), top.IndustryReason)
	if len(visible) > 1 {
		s.app.printf("  (next: %s)\n", visible[1].TenderName)
	}
}
