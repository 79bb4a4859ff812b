package validation

import (
	"errors"
	"strings"
	"testing"

	"TaskWheelService/commands"
	"TaskWheelService/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func fields(errs []FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestCreateTaskCommandValid(t *testing.T) {
	for name, vocab := range config.Presets() {
		t.Run(name, func(t *testing.T) {
			validate := New(vocab)
			cmd := commands.CreateTaskCommand{
				Title:    "Buy milk",
				Category: vocab.Categories[0],
				Status:   vocab.TerminalStatus,
				DueDate:  "2026-11-01",
			}
			assert.NoError(t, validate.Struct(cmd))
		})
	}
}

func TestCreateTaskCommandReportsAllFields(t *testing.T) {
	validate := New(config.ClassicVocabulary())
	cmd := commands.CreateTaskCommand{
		Title:       "",
		Description: strings.Repeat("x", 501),
		Category:    "Gardening",
		Status:      "Done",
		Priority:    "Urgent",
		DueDate:     "next tuesday",
	}

	errs := Errors(validate.Struct(cmd))
	assert.ElementsMatch(t,
		[]string{"title", "description", "category", "status", "priority", "dueDate"},
		fields(errs))
}

func TestCategoryFollowsVocabulary(t *testing.T) {
	cmd := commands.CreateTaskCommand{Title: "Paint", Category: "Art and Craft"}

	assert.Error(t, New(config.ClassicVocabulary()).Struct(cmd))
	assert.NoError(t, New(config.ExtendedVocabulary()).Struct(cmd))
}

func TestPriorityRejectedWithoutPriorities(t *testing.T) {
	validate := New(config.ExtendedVocabulary())
	cmd := commands.CreateTaskCommand{Title: "Walk", Category: "Nature", Priority: "High"}

	errs := Errors(validate.Struct(cmd))
	require.Len(t, errs, 1)
	assert.Equal(t, FieldError{Field: "priority", Message: "Invalid priority"}, errs[0])
}

func TestTitleLengthCountsCharacters(t *testing.T) {
	validate := New(config.ClassicVocabulary())
	cmd := commands.CreateTaskCommand{Title: strings.Repeat("é", 100), Category: "Work"}
	assert.NoError(t, validate.Struct(cmd))

	cmd.Title = strings.Repeat("é", 101)
	assert.Error(t, validate.Struct(cmd))
}

func TestUpdateTaskCommand(t *testing.T) {
	validate := New(config.ClassicVocabulary())

	t.Run("empty patch", func(t *testing.T) {
		assert.NoError(t, validate.Struct(commands.UpdateTaskCommand{}))
	})

	t.Run("blank title", func(t *testing.T) {
		errs := Errors(validate.Struct(commands.UpdateTaskCommand{Title: ptr("   ")}))
		assert.Equal(t, []string{"title"}, fields(errs))
	})

	t.Run("empty due date clears", func(t *testing.T) {
		assert.NoError(t, validate.Struct(commands.UpdateTaskCommand{DueDate: ptr("")}))
	})

	t.Run("bad status and due date", func(t *testing.T) {
		errs := Errors(validate.Struct(commands.UpdateTaskCommand{Status: ptr("Archived"), DueDate: ptr("31/12/2026")}))
		assert.ElementsMatch(t, []string{"status", "dueDate"}, fields(errs))
	})
}

func TestListAndRandomAcceptAllSentinel(t *testing.T) {
	validate := New(config.ClassicVocabulary())

	assert.NoError(t, validate.Struct(commands.ListTasksCommand{Status: "All", Category: "All"}))
	assert.NoError(t, validate.Struct(commands.RandomTaskCommand{Category: "All"}))
	assert.NoError(t, validate.Struct(commands.RandomTaskCommand{Category: "Gardening"}))

	errs := Errors(validate.Struct(commands.ListTasksCommand{Page: -1, PageSize: 500}))
	assert.ElementsMatch(t, []string{"page", "limit"}, fields(errs))
}

func TestRegisterCommand(t *testing.T) {
	validate := New(config.ClassicVocabulary())
	errs := Errors(validate.Struct(commands.RegisterCommand{FullName: "A", Email: "not-an-email", Password: "123"}))
	assert.ElementsMatch(t, []string{"fullName", "email", "password"}, fields(errs))
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2026-10-19", "2026-10-19T08:30:00Z", "2026-10-19T08:30:00+02:00", "2026-10-19T08:30:00"} {
		_, err := ParseDate(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseDate("19.10.2026")
	assert.Error(t, err)
}

func TestErrorsNonValidationError(t *testing.T) {
	assert.Nil(t, Errors(nil))
	errs := Errors(errors.New("boom"))
	require.Len(t, errs, 1)
	assert.Equal(t, "boom", errs[0].Message)
}
