package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/domain/srs"
	"github.com/greenleaf-study/greenleaf/internal/domain/streak"
	"github.com/greenleaf-study/greenleaf/internal/importer"
	"github.com/greenleaf-study/greenleaf/internal/platform/sqlite"
)

// cli runs guest commands against a local store.
type cli struct {
	store   *sqlite.Store
	in      *bufio.Reader
	out     io.Writer
	logger  *slog.Logger
	srs     srs.Service
	maxRows int
	now     func() time.Time
}

func newCLI(st *sqlite.Store, in io.Reader, out io.Writer, logger *slog.Logger) *cli {
	return &cli{
		store:   st,
		in:      bufio.NewReader(in),
		out:     out,
		logger:  logger,
		srs:     srs.NewDefaultService(),
		maxRows: 1000,
		now:     time.Now,
	}
}

func (c *cli) dispatch(ctx context.Context, opts *cliOptions) error {
	args := opts.args
	switch {
	case len(args) == 3 && args[0] == "deck" && args[1] == "add":
		return c.addDeck(ctx, args[2], opts.description)
	case len(args) == 2 && args[0] == "deck" && args[1] == "list":
		return c.listDecks(ctx)
	case len(args) == 5 && args[0] == "card" && args[1] == "add":
		return c.addCard(ctx, args[2], args[3], args[4])
	case len(args) == 3 && args[0] == "import":
		return c.importFile(ctx, args[1], args[2])
	case len(args) == 2 && args[0] == "study":
		return c.study(ctx, args[1], opts.limit)
	case len(args) == 1 && args[0] == "streak":
		return c.showStreak(ctx)
	default:
		return errUsage
	}
}

func (c *cli) addDeck(ctx context.Context, name, description string) error {
	deck, err := c.store.CreateDeck(ctx, name, description)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Created deck %q\n", deck.Name)
	return nil
}

func (c *cli) listDecks(ctx context.Context) error {
	decks, err := c.store.ListDecks(ctx, c.now())
	if err != nil {
		return err
	}
	if len(decks) == 0 {
		fmt.Fprintln(c.out, "No decks yet. Create one with: guest deck add <name>")
		return nil
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DECK\tCARDS\tDUE")
	for _, d := range decks {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", d.Name, d.CardCount, d.DueCount)
	}
	return tw.Flush()
}

func (c *cli) addCard(ctx context.Context, deckName, front, back string) error {
	deck, err := c.store.DeckByName(ctx, deckName)
	if err != nil {
		return fmt.Errorf("deck %q: %w", deckName, err)
	}
	if _, err := c.store.AddCard(ctx, deck.ID, front, back); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Added card to %q\n", deck.Name)
	return nil
}

func (c *cli) importFile(ctx context.Context, deckName, path string) error {
	deck, err := c.store.DeckByName(ctx, deckName)
	if err != nil {
		return fmt.Errorf("deck %q: %w", deckName, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := importer.Parse(f, path, c.maxRows)
	if err != nil {
		return err
	}

	cards := make([]*domain.Card, 0, len(result.Rows))
	for _, row := range result.Rows {
		card, err := domain.NewCard(sqlite.GuestUserID, deck.ID, row.Front, row.Back)
		if err != nil {
			result.Skip(row.Line, err.Error())
			continue
		}
		cards = append(cards, card)
	}
	if err := c.store.AddCards(ctx, cards); err != nil {
		return err
	}

	c.logger.Info("cards imported",
		slog.String("deck_id", deck.ID.String()),
		slog.Int("imported", len(cards)),
		slog.Int("skipped", result.Skipped))

	fmt.Fprintf(c.out, "Imported %d cards into %q (%d skipped)\n", len(cards), deck.Name, result.Skipped)
	for _, e := range result.Errors {
		fmt.Fprintf(c.out, "  %s\n", e)
	}
	return nil
}

func (c *cli) study(ctx context.Context, deckName string, limit int) error {
	deck, err := c.store.DeckByName(ctx, deckName)
	if err != nil {
		return fmt.Errorf("deck %q: %w", deckName, err)
	}

	cards, err := c.store.DueCards(ctx, deck.ID, c.now(), limit)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		fmt.Fprintf(c.out, "Nothing due in %q. Come back later.\n", deck.Name)
		return nil
	}

	reviewed, correct := 0, 0
	for i, card := range cards {
		fmt.Fprintf(c.out, "\n[%d/%d] %s\n", i+1, len(cards), card.Front)
		if _, ok := c.prompt("Press Enter to reveal "); !ok {
			break
		}
		fmt.Fprintf(c.out, "  %s\n", card.Back)

		answer, ok := c.askCorrect()
		if !ok {
			break
		}

		now := c.now()
		card.ReviewState = c.srs.ApplyReview(card.ReviewState, answer, now)
		card.UpdatedAt = now
		if err := c.store.SaveReview(ctx, card); err != nil {
			return err
		}
		reviewed++
		if answer {
			correct++
		}
		fmt.Fprintf(c.out, "  next review %s\n", card.NextReview.Local().Format(streak.DateLayout))
	}

	if reviewed == 0 {
		fmt.Fprintln(c.out, "\nNo cards reviewed.")
		return nil
	}

	if _, err := c.store.AddStudyDay(ctx, streak.DateKey(c.now())); err != nil {
		return err
	}
	c.logger.Info("study session recorded",
		slog.String("deck_id", deck.ID.String()),
		slog.Int("cards_studied", reviewed),
		slog.Int("cards_correct", correct))

	fmt.Fprintf(c.out, "\nSession done: %d/%d correct.\n", correct, reviewed)
	return c.showStreak(ctx)
}

// askCorrect repeats until the answer is yes or no. ok is false when the
// user quits or input ends.
func (c *cli) askCorrect() (correct, ok bool) {
	for {
		line, more := c.prompt("Did you get it right? [y/n/q] ")
		if !more {
			return false, false
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, true
		case "n", "no":
			return false, true
		case "q", "quit":
			return false, false
		}
	}
}

// prompt prints label and reads one trimmed line. ok is false at EOF.
func (c *cli) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (c *cli) showStreak(ctx context.Context) error {
	days, err := c.store.StudyDays(ctx)
	if err != nil {
		return err
	}

	view := streak.Compute(streak.NewDateSet(days...), c.now())
	stage := streak.StageInfo(streak.GardenStage(view.CurrentStreak))

	fmt.Fprintf(c.out, "Current streak: %d day(s)\n", view.CurrentStreak)
	fmt.Fprintf(c.out, "Longest streak: %d day(s)\n", view.LongestStreak)
	switch view.Status {
	case streak.StatusActive:
		fmt.Fprintln(c.out, "Status: active, studied today")
	case streak.StatusAtRisk:
		fmt.Fprintf(c.out, "Status: at risk, %.1f hours left today\n", view.HoursRemaining)
	default:
		fmt.Fprintln(c.out, "Status: broken")
	}
	fmt.Fprintf(c.out, "Garden: %s (stage %d of %d)\n", stage.Name, stage.Index, streak.MaxStage)
	return nil
}
