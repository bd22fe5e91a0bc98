package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/greenleaf-study/greenleaf/internal/platform/sqlite"
	"github.com/greenleaf-study/greenleaf/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testNow is after any card creation time so fresh cards are due.
var testNow = time.Date(2099, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestCLI(t *testing.T, input string) (*cli, *bytes.Buffer) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := sqlite.Open(context.Background(), ":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	out := &bytes.Buffer{}
	c := newCLI(st, strings.NewReader(input), out, log)
	c.now = func() time.Time { return testNow }
	return c, out
}

func opts(args ...string) *cliOptions {
	return &cliOptions{limit: 20, args: args}
}

func TestDispatchRejectsUnknownCommands(t *testing.T) {
	c, _ := newTestCLI(t, "")
	ctx := context.Background()

	for _, args := range [][]string{
		{"deck"},
		{"deck", "remove", "x"},
		{"card", "add", "Spanish"},
		{"import", "file.csv"},
		{"garden"},
	} {
		assert.ErrorIs(t, c.dispatch(ctx, opts(args...)), errUsage, "args %v", args)
	}
}

func TestDeckAddAndList(t *testing.T) {
	c, out := newTestCLI(t, "")
	ctx := context.Background()

	require.NoError(t, c.dispatch(ctx, opts("deck", "list")))
	assert.Contains(t, out.String(), "No decks yet")

	o := opts("deck", "add", "Spanish")
	o.description = "verbs"
	require.NoError(t, c.dispatch(ctx, o))
	require.NoError(t, c.dispatch(ctx, opts("card", "add", "Spanish", "hola", "hello")))

	out.Reset()
	require.NoError(t, c.dispatch(ctx, opts("deck", "list")))
	assert.Contains(t, out.String(), "DECK")
	assert.Regexp(t, `Spanish\s+1\s+1`, out.String())

	err := c.dispatch(ctx, opts("deck", "add", "Spanish"))
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestCardAddUnknownDeck(t *testing.T) {
	c, _ := newTestCLI(t, "")

	err := c.dispatch(context.Background(), opts("card", "add", "Nope", "a", "b"))
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
}

func TestImportCSV(t *testing.T) {
	c, out := newTestCLI(t, "")
	ctx := context.Background()
	require.NoError(t, c.dispatch(ctx, opts("deck", "add", "Spanish")))

	path := filepath.Join(t.TempDir(), "cards.csv")
	require.NoError(t, os.WriteFile(path, []byte("front,back\nhola,hello\n,missing\nadios,goodbye\n"), 0o600))

	out.Reset()
	require.NoError(t, c.dispatch(ctx, opts("import", "Spanish", path)))
	assert.Contains(t, out.String(), `Imported 2 cards into "Spanish" (1 skipped)`)
	assert.Contains(t, out.String(), "line 3: front and back are both required")

	deck, err := c.store.DeckByName(ctx, "Spanish")
	require.NoError(t, err)
	due, err := c.store.DueCards(ctx, deck.ID, testNow, 10)
	require.NoError(t, err)
	assert.Len(t, due, 2)
}

func TestImportRejectsUnsupportedFile(t *testing.T) {
	c, _ := newTestCLI(t, "")
	ctx := context.Background()
	require.NoError(t, c.dispatch(ctx, opts("deck", "add", "Spanish")))

	path := filepath.Join(t.TempDir(), "cards.txt")
	require.NoError(t, os.WriteFile(path, []byte("hola,hello\n"), 0o600))

	assert.Error(t, c.dispatch(ctx, opts("import", "Spanish", path)))
}

func TestStudySchedulesAnswersAndRecordsDay(t *testing.T) {
	c, out := newTestCLI(t, "\ny\n\nmaybe\nn\n")
	ctx := context.Background()
	require.NoError(t, c.dispatch(ctx, opts("deck", "add", "Spanish")))
	require.NoError(t, c.dispatch(ctx, opts("card", "add", "Spanish", "hola", "hello")))
	require.NoError(t, c.dispatch(ctx, opts("card", "add", "Spanish", "adios", "goodbye")))

	out.Reset()
	require.NoError(t, c.dispatch(ctx, opts("study", "Spanish")))

	assert.Contains(t, out.String(), "Session done: 1/2 correct.")
	assert.Contains(t, out.String(), "Current streak: 1 day(s)")
	assert.Contains(t, out.String(), "Status: active")
	assert.Contains(t, out.String(), "Garden: Seed (stage 1 of 10)")

	days, err := c.store.StudyDays(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2099-03-10"}, days)

	deck, err := c.store.DeckByName(ctx, "Spanish")
	require.NoError(t, err)

	due, err := c.store.DueCards(ctx, deck.ID, testNow, 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	// The missed card comes back after one day, the known one after three.
	due, err = c.store.DueCards(ctx, deck.ID, testNow.Add(25*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, 0, due[0].Difficulty)
	assert.Equal(t, 1, due[0].TimesReviewed)
	assert.Equal(t, 0, due[0].TimesCorrect)

	due, err = c.store.DueCards(ctx, deck.ID, testNow.Add(73*time.Hour), 10)
	require.NoError(t, err)
	assert.Len(t, due, 2)
}

func TestStudyQuitRecordsNothing(t *testing.T) {
	c, out := newTestCLI(t, "\nq\n")
	ctx := context.Background()
	require.NoError(t, c.dispatch(ctx, opts("deck", "add", "Spanish")))
	require.NoError(t, c.dispatch(ctx, opts("card", "add", "Spanish", "hola", "hello")))

	require.NoError(t, c.dispatch(ctx, opts("study", "Spanish")))
	assert.Contains(t, out.String(), "No cards reviewed.")

	days, err := c.store.StudyDays(ctx)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestStudyNothingDue(t *testing.T) {
	c, out := newTestCLI(t, "")
	ctx := context.Background()
	require.NoError(t, c.dispatch(ctx, opts("deck", "add", "Spanish")))

	require.NoError(t, c.dispatch(ctx, opts("study", "Spanish")))
	assert.Contains(t, out.String(), `Nothing due in "Spanish"`)
}

func TestStreakAtRiskAndBroken(t *testing.T) {
	c, out := newTestCLI(t, "")
	ctx := context.Background()

	require.NoError(t, c.dispatch(ctx, opts("streak")))
	assert.Contains(t, out.String(), "Current streak: 0 day(s)")
	assert.Contains(t, out.String(), "Status: broken")
	assert.Contains(t, out.String(), "Garden: Bare Soil (stage 0 of 10)")

	for _, day := range []string{"2099-03-07", "2099-03-08", "2099-03-09"} {
		_, err := c.store.AddStudyDay(ctx, day)
		require.NoError(t, err)
	}

	out.Reset()
	require.NoError(t, c.dispatch(ctx, opts("streak")))
	assert.Contains(t, out.String(), "Current streak: 3 day(s)")
	assert.Contains(t, out.String(), "Status: at risk, 15.0 hours left today")
	assert.Contains(t, out.String(), "Garden: Sprout (stage 2 of 10)")
}
