// Package runner is the screen that drives a running test.
package runner

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/i18n"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
	"github.com/VitoPalumboPodcast/Invalsi/internal/router"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screen"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/result"
	sess "github.com/VitoPalumboPodcast/Invalsi/internal/session"
	"github.com/VitoPalumboPodcast/Invalsi/internal/store"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/components"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/layout"
)

// RunnerScreen implements screen.Screen for a running test.
type RunnerScreen struct {
	deps      screen.Deps
	cfg       quiz.Config
	state     *sess.Session
	sessionID string

	options components.OptionList
	grid    components.MatrixGrid
	scroll  int

	confirmFinish bool
	confirmQuit   bool
	saving        bool

	// jumping collects a question number typed after "g".
	jumping bool
	jump    string

	speaking  bool
	speechSeq int
	notice    string
}

var _ screen.Screen = (*RunnerScreen)(nil)
var _ screen.Closer = (*RunnerScreen)(nil)
var _ screen.KeyHintProvider = (*RunnerScreen)(nil)
var _ screen.StatusProvider = (*RunnerScreen)(nil)
var _ screen.BackHandler = (*RunnerScreen)(nil)

// New starts a session over questions. Extra options are passed to the
// session, after the ones derived from deps.
func New(deps screen.Deps, cfg quiz.Config, questions []quiz.Question, opts ...sess.Option) (*RunnerScreen, error) {
	deps = deps.WithDefaults()
	sessOpts := []sess.Option{sess.WithSpeaker(deps.Speaker)}
	if deps.ExamDuration > 0 {
		sessOpts = append(sessOpts, sess.WithExamDuration(deps.ExamDuration))
	}
	state, err := sess.New(questions, cfg.Mode, append(sessOpts, opts...)...)
	if err != nil {
		return nil, err
	}
	r := &RunnerScreen{
		deps:      deps,
		cfg:       cfg,
		state:     state,
		sessionID: uuid.NewString(),
	}
	r.syncWidgets(true)
	return r, nil
}

// Session exposes the running session.
func (r *RunnerScreen) Session() *sess.Session { return r.state }

func (r *RunnerScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{r.logEvent(store.SessionActionStart)}
	if r.state.Mode() == quiz.ModeExam {
		cmds = append(cmds, tickCmd())
	}
	return tea.Batch(cmds...)
}

func (r *RunnerScreen) Title() string {
	return i18n.Td("RunnerTitle", map[string]any{
		"Subject": string(r.cfg.Subject),
		"Grade":   r.cfg.Grade.Number(),
	})
}

// HandlesBack is always true: leaving a test asks for confirmation.
func (r *RunnerScreen) HandlesBack() bool { return true }

// Status shows the countdown in exam mode and the running score in
// training mode.
func (r *RunnerScreen) Status() layout.Status {
	if r.state.Mode() == quiz.ModeExam {
		return layout.Status{
			Text:    "⏱ " + layout.FormatClock(r.state.TimeRemaining()),
			Warning: r.state.TimeWarning(),
		}
	}
	return layout.Status{Text: i18n.Td("TrainingStatus", map[string]any{
		"Answered": r.state.AnsweredCount(),
		"Correct":  r.state.CurrentCorrectCount(),
		"Total":    r.state.Len(),
	})}
}

func (r *RunnerScreen) KeyHints() []layout.KeyHint {
	if r.confirmFinish || r.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: i18n.T("HintYes")},
			{Key: "N", Description: i18n.T("HintNo")},
		}
	}
	if r.jumping {
		return []layout.KeyHint{
			{Key: "1-9", Description: i18n.T("HintQuestionNumber")},
			{Key: "Enter", Description: i18n.T("HintGo")},
			{Key: "Esc", Description: i18n.T("HintCancel")},
		}
	}
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: i18n.T("HintMove")},
		{Key: "Space", Description: i18n.T("HintSelect")},
	}
	if r.state.Mode() == quiz.ModeTraining {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: i18n.T("HintConfirm")})
	}
	hints = append(hints,
		layout.KeyHint{Key: "N/P", Description: i18n.T("HintNextPrev")},
		layout.KeyHint{Key: "G", Description: i18n.T("HintJump")},
		layout.KeyHint{Key: "F", Description: i18n.T("HintFinish")},
	)
	if r.state.CurrentQuestion().AudioScript != "" {
		hints = append(hints, layout.KeyHint{Key: "S", Description: i18n.T("HintListen")})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: i18n.T("HintQuit")})
}

func (r *RunnerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		if r.state.Completed() {
			return r, nil
		}
		if r.state.Tick() {
			r.deps.Logger.Info("exam time expired", "session", r.sessionID)
			return r.complete()
		}
		return r, tickCmd()

	case speechDoneMsg:
		if msg.Seq == r.speechSeq {
			r.speaking = false
			if msg.Err != nil {
				r.notice = i18n.Td("SpeechFailed", map[string]any{"Error": msg.Err.Error()})
			}
		}
		return r, nil

	case recordSavedMsg:
		return r.handleSaved(msg)

	case tea.KeyMsg:
		if r.saving {
			return r, nil
		}
		if r.confirmFinish || r.confirmQuit {
			return r.handleConfirmKey(msg)
		}
		if r.jumping {
			return r.handleJumpKey(msg)
		}
		return r.handleKey(msg)
	}
	return r, nil
}

func (r *RunnerScreen) handleConfirmKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		if r.confirmQuit {
			r.confirmQuit = false
			return r.abandon()
		}
		r.confirmFinish = false
		return r.complete()
	case "n", "N", "esc":
		r.confirmFinish = false
		r.confirmQuit = false
	}
	return r, nil
}

func (r *RunnerScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	cur := r.state.Current()
	q := r.state.CurrentQuestion()
	r.notice = ""

	switch key := msg.String(); key {
	case "esc", "q":
		r.confirmQuit = true
		return r, nil
	case "f", "F":
		r.confirmFinish = true
		return r, nil
	case "g", "G":
		r.jumping = true
		r.jump = ""
		return r, nil
	case "n", "tab":
		r.navigate(cur + 1)
		return r, nil
	case "p", "shift+tab":
		r.navigate(cur - 1)
		return r, nil
	case "home":
		r.navigate(0)
		return r, nil
	case "end":
		r.navigate(r.state.Len() - 1)
		return r, nil
	case "pgdown", "ctrl+d":
		r.scroll += 5
		return r, nil
	case "pgup", "ctrl+u":
		r.scroll = max(0, r.scroll-5)
		return r, nil
	case "s", "S":
		return r, r.toggleSpeech()
	case "x", "backspace":
		if r.state.ClearAnswer(cur) {
			r.syncWidgets(false)
		}
		return r, nil
	case "space":
		r.selectAtCursor()
		return r, nil
	case "enter":
		return r.handleEnter()
	case "a", "b", "c", "d":
		if q.Kind == quiz.KindSingleChoice {
			opt := int(key[0] - 'a')
			r.options.Cursor = min(opt, len(q.Choice.Options)-1)
			if r.state.SelectOption(cur, opt) {
				r.syncWidgets(false)
			}
		}
		return r, nil
	}

	if q.Kind == quiz.KindMatrix {
		r.grid, _ = r.grid.Update(msg)
		return r, nil
	}
	switch msg.String() {
	case "left", "h":
		r.navigate(cur - 1)
	case "right", "l":
		r.navigate(cur + 1)
	default:
		r.options, _ = r.options.Update(msg)
	}
	return r, nil
}

// handleJumpKey reads a question number from the palette. The jump happens
// on Enter, or as soon as the digits typed can only name one question.
func (r *RunnerScreen) handleJumpKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	p := r.palette()
	switch key := msg.String(); key {
	case "esc":
		r.jumping = false
	case "backspace":
		if r.jump != "" {
			r.jump = r.jump[:len(r.jump)-1]
		}
	case "enter":
		r.finishJump(p)
	default:
		if len(key) != 1 || key[0] < '0' || key[0] > '9' {
			return r, nil
		}
		r.jump += key
		if p.Complete(r.jump) {
			r.finishJump(p)
		}
	}
	return r, nil
}

func (r *RunnerScreen) finishJump(p components.Palette) {
	r.jumping = false
	to, ok := p.Target(r.jump)
	if !ok {
		r.notice = i18n.Td("JumpInvalid", map[string]any{"Input": r.jump, "Total": r.state.Len()})
		return
	}
	r.navigate(to)
}

// handleEnter selects the option under the cursor. In training mode it
// also confirms the answer, and a second Enter moves on.
func (r *RunnerScreen) handleEnter() (screen.Screen, tea.Cmd) {
	cur := r.state.Current()
	if r.state.Mode() == quiz.ModeExam {
		r.selectAtCursor()
		return r, nil
	}

	if r.state.Confirmed(cur) {
		if cur == r.state.Len()-1 {
			r.confirmFinish = true
			return r, nil
		}
		r.navigate(cur + 1)
		return r, nil
	}

	if r.state.CurrentQuestion().Kind == quiz.KindSingleChoice {
		r.selectAtCursor()
	}
	if !r.state.Confirm(cur) {
		r.notice = i18n.T("NothingToConfirm")
		return r, nil
	}
	r.syncWidgets(false)
	return r, nil
}

func (r *RunnerScreen) selectAtCursor() {
	cur := r.state.Current()
	var changed bool
	switch r.state.CurrentQuestion().Kind {
	case quiz.KindSingleChoice:
		changed = r.state.SelectOption(cur, r.options.Cursor)
	case quiz.KindMatrix:
		changed = r.state.SelectCell(cur, r.grid.CursorRow, r.grid.CursorCol)
		if changed && r.grid.CursorRow < len(r.grid.Rows)-1 {
			r.grid.CursorRow++
		}
	}
	if changed {
		r.syncWidgets(false)
	}
}

func (r *RunnerScreen) navigate(to int) {
	before := r.state.Current()
	r.state.Navigate(to)
	if r.state.Current() == before {
		return
	}
	r.speaking = false
	r.scroll = 0
	r.syncWidgets(true)
}

// syncWidgets rebuilds the answer widget from the session. The cursor is
// kept unless the question changed.
func (r *RunnerScreen) syncWidgets(reset bool) {
	cur := r.state.Current()
	q := r.state.CurrentQuestion()
	a := r.state.Answer(cur)
	feedback := r.state.Feedback(cur)

	switch q.Kind {
	case quiz.KindSingleChoice:
		cursor := r.options.Cursor
		r.options = components.NewOptionList(q.Choice.Options, a.Index())
		if !reset {
			r.options.Cursor = cursor
		}
		if feedback {
			r.options.Correct = q.Choice.CorrectIndex
		}
	case quiz.KindMatrix:
		row, col := r.grid.CursorRow, r.grid.CursorCol
		r.grid = components.NewMatrixGrid(q.Matrix.Rows, q.Matrix.Columns, a.Cells())
		if !reset {
			r.grid.CursorRow, r.grid.CursorCol = row, col
		}
		if feedback {
			r.grid.Correct = q.Matrix.CorrectColumns
		}
	}
}

func (r *RunnerScreen) toggleSpeech() tea.Cmd {
	text := r.state.CurrentQuestion().AudioScript
	if text == "" {
		return nil
	}
	r.speechSeq++
	if r.speaking {
		r.speaking = false
		r.deps.Speaker.Cancel()
		return nil
	}
	r.speaking = true
	sp, seq := r.deps.Speaker, r.speechSeq
	return func() tea.Msg {
		return speechDoneMsg{Seq: seq, Err: sp.Speak(context.Background(), text)}
	}
}

// complete finishes the session and saves it. Only the first call does
// anything: a timer expiry racing a manual finish saves once.
func (r *RunnerScreen) complete() (screen.Screen, tea.Cmd) {
	r.state.Finish()
	if r.saving {
		return r, nil
	}
	r.saving = true
	r.speaking = false
	r.confirmFinish, r.confirmQuit = false, false

	rec, err := sess.Aggregate(r.state, r.cfg)
	if err != nil {
		r.deps.Logger.Error("aggregate session", "session", r.sessionID, "error", err)
		r.saving = false
		return r, nil
	}

	log := r.deps.History
	save := func() tea.Msg {
		if log == nil {
			return recordSavedMsg{Record: rec}
		}
		return recordSavedMsg{Record: rec, Err: log.Append(context.Background(), rec)}
	}
	return r, tea.Batch(save, r.logFinish(rec))
}

func (r *RunnerScreen) handleSaved(msg recordSavedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		r.deps.Logger.Error("save test result", "record", msg.Record.ID, "error", msg.Err)
	} else {
		r.deps.Logger.Info("test completed",
			"record", msg.Record.ID,
			"subject", msg.Record.Config.Subject,
			"score", msg.Record.ScorePercent,
			"elapsed", msg.Record.ElapsedSeconds,
		)
	}
	res := result.New(r.deps, msg.Record, msg.Err)
	return r, func() tea.Msg { return router.ReplaceScreenMsg{Screen: res} }
}

// Close stops any speech still playing when the screen leaves the stack.
func (r *RunnerScreen) Close() {
	if r.speaking {
		r.deps.Speaker.Cancel()
		r.speaking = false
	}
}

func (r *RunnerScreen) abandon() (screen.Screen, tea.Cmd) {
	r.deps.Speaker.Cancel()
	r.speaking = false
	return r, tea.Batch(
		r.logEvent(store.SessionActionAbandon),
		func() tea.Msg { return router.PopToRootMsg{} },
	)
}

func (r *RunnerScreen) eventData(action string) store.SessionEventData {
	return store.SessionEventData{
		SessionID: r.sessionID,
		Action:    action,
		Subject:   string(r.cfg.Subject),
		Grade:     string(r.cfg.Grade),
		Mode:      string(r.state.Mode()),
		Questions: r.state.Len(),
	}
}

func (r *RunnerScreen) logEvent(action string) tea.Cmd {
	if r.deps.Events == nil {
		return nil
	}
	data := r.eventData(action)
	if action == store.SessionActionAbandon {
		data.DurationSecs = int(r.state.Elapsed() / time.Second)
	}
	return r.appendEvent(data)
}

func (r *RunnerScreen) logFinish(rec history.Record) tea.Cmd {
	if r.deps.Events == nil {
		return nil
	}
	data := r.eventData(store.SessionActionFinish)
	data.CorrectAnswers = rec.CorrectCount
	data.DurationSecs = rec.ElapsedSeconds
	return r.appendEvent(data)
}

func (r *RunnerScreen) appendEvent(data store.SessionEventData) tea.Cmd {
	repo, logger := r.deps.Events, r.deps.Logger
	return func() tea.Msg {
		if err := repo.AppendSessionEvent(context.Background(), data); err != nil {
			logger.Warn("record session event", "action", data.Action, "error", err)
		}
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
