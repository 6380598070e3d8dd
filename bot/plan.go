package bot

import (
	"errors"

	tgcallbacks "github.com/breathebhutan/tashi/core/telegram/callbacks"
	tghelpers "github.com/breathebhutan/tashi/core/telegram/helpers"
	"github.com/breathebhutan/tashi/core/telegram/keyboard"
	"github.com/breathebhutan/tashi/travel/finalize"
	"github.com/breathebhutan/tashi/travel/planner"
	"github.com/breathebhutan/tashi/travel/render"

	tele "gopkg.in/telebot.v4"
)

// Callback uniques of the planning dialogue.
const (
	cbPlanDuration = "plan_dur"
	cbPlanInterest = "plan_int"
	cbPlanDone     = "plan_done"
	cbPlanBudget   = "plan_budget"
	cbPlanConfirm  = "plan_confirm"
	cbPlanRestart  = "plan_restart"
	cbPlanCancel   = "plan_cancel"
)

func (a *App) registerPlanFlow() {
	// Inline keyboard presses.
	_ = a.registry.RegisterCallback(cbPlanDuration, a.cbDuration)
	_ = a.registry.RegisterCallback(cbPlanInterest, a.cbInterest)
	_ = a.registry.RegisterCallback(cbPlanDone, a.cbInterestsDone)
	_ = a.registry.RegisterCallback(cbPlanBudget, a.cbBudget)
	_ = a.registry.RegisterCallback(cbPlanConfirm, a.cbConfirm)
	_ = a.registry.RegisterCallback(cbPlanRestart, a.cbRestart)
	_ = a.registry.RegisterCallback(cbPlanCancel, a.cbCancel)

	// Typed answers while a session is active.
	a.dialog.Handle(string(planner.StageChoosingDuration), a.textDuration)
	a.dialog.Handle(string(planner.StageChoosingInterests), a.textInterests)
	a.dialog.Handle(string(planner.StageChoosingBudget), a.textBudget)
	a.dialog.Handle(string(planner.StageConfirming), a.textConfirm)
}

// --- commands ---

func (a *App) handlePlan(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sess, resumed, err := a.planner.Start(ctx, c.Sender().ID)
	if err != nil {
		return a.planError(c, err, render.UnknownInput)
	}
	if resumed {
		return a.promptStage(c, sess)
	}
	return tghelpers.SendMD(c, render.DurationPrompt, durationKeyboard())
}

func (a *App) handleCancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	existed, err := a.planner.Cancel(ctx, c.Sender().ID)
	if err != nil {
		return a.planError(c, err, render.UnknownInput)
	}
	if existed {
		return tghelpers.SendText(c, render.Cancelled)
	}
	return tghelpers.SendText(c, render.NothingToCancel)
}

func (a *App) handleReset(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if _, err := a.planner.Cancel(ctx, c.Sender().ID); err != nil {
		return a.planError(c, err, render.UnknownInput)
	}
	if _, _, err := a.planner.Start(ctx, c.Sender().ID); err != nil {
		return a.planError(c, err, render.UnknownInput)
	}
	return tghelpers.SendMD(c, render.DurationPrompt, durationKeyboard())
}

// --- keyboard callbacks ---

func (a *App) cbDuration(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	bucket := tgcallbacks.CallbackPayload(c)
	sess, err := a.planner.ChooseDuration(ctx, c.Sender().ID, bucket)
	if err != nil {
		return a.planError(c, err, render.InvalidDuration)
	}
	return tghelpers.EditOrSendMD(c, render.InterestsPrompt(sess.Plan.Interests), interestKeyboard())
}

func (a *App) cbInterest(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	tag := tgcallbacks.CallbackPayload(c)
	sess, err := a.planner.AddInterests(ctx, c.Sender().ID, tag)
	if err != nil {
		return a.planError(c, err, render.InvalidInterest)
	}
	return tghelpers.EditOrSendMD(c, render.InterestsPrompt(sess.Plan.Interests), interestKeyboard())
}

func (a *App) cbInterestsDone(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if _, err := a.planner.FinishInterests(ctx, c.Sender().ID); err != nil {
		return a.planError(c, err, render.EmptyInterests)
	}
	return tghelpers.EditOrSendMD(c, render.BudgetPrompt, budgetKeyboard())
}

func (a *App) cbBudget(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	bucket := tgcallbacks.CallbackPayload(c)
	sess, err := a.planner.ChooseBudget(ctx, c.Sender().ID, bucket)
	if err != nil {
		return a.planError(c, err, render.InvalidBudget)
	}
	return tghelpers.EditOrSendMD(c, confirmText(sess), confirmKeyboard())
}

func (a *App) cbConfirm(c tele.Context) error {
	return a.completePlan(c)
}

func (a *App) cbRestart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if _, err := a.planner.Restart(ctx, c.Sender().ID); err != nil {
		return a.planError(c, err, render.UnknownInput)
	}
	return tghelpers.EditOrSendMD(c, render.DurationPrompt, durationKeyboard())
}

func (a *App) cbCancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	existed, err := a.planner.Cancel(ctx, c.Sender().ID)
	if err != nil {
		return a.planError(c, err, render.UnknownInput)
	}
	if existed {
		return tghelpers.EditOrSendMD(c, render.Cancelled)
	}
	return tghelpers.EditOrSendMD(c, render.NothingToCancel)
}

// --- typed answers ---

func (a *App) textDuration(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	bucket, ok := planner.ParseDuration(c.Text())
	if !ok {
		return tghelpers.SendMD(c, render.InvalidDuration, durationKeyboard())
	}
	sess, err := a.planner.ChooseDuration(ctx, c.Sender().ID, bucket)
	if err != nil {
		return a.planError(c, err, render.InvalidDuration)
	}
	return tghelpers.SendMD(c, render.InterestsPrompt(sess.Plan.Interests), interestKeyboard())
}

func (a *App) textInterests(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if planner.InterestsDone(c.Text()) {
		if _, err := a.planner.FinishInterests(ctx, c.Sender().ID); err != nil {
			return a.planError(c, err, render.EmptyInterests)
		}
		return tghelpers.SendMD(c, render.BudgetPrompt, budgetKeyboard())
	}
	tags := planner.ParseInterests(c.Text())
	if len(tags) == 0 {
		return tghelpers.SendMD(c, render.InvalidInterest, interestKeyboard())
	}
	sess, err := a.planner.AddInterests(ctx, c.Sender().ID, tags...)
	if err != nil {
		return a.planError(c, err, render.InvalidInterest)
	}
	return tghelpers.SendMD(c, render.InterestsPrompt(sess.Plan.Interests), interestKeyboard())
}

func (a *App) textBudget(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	bucket, ok := planner.ParseBudget(c.Text())
	if !ok {
		return tghelpers.SendMD(c, render.InvalidBudget, budgetKeyboard())
	}
	sess, err := a.planner.ChooseBudget(ctx, c.Sender().ID, bucket)
	if err != nil {
		return a.planError(c, err, render.InvalidBudget)
	}
	return tghelpers.SendMD(c, confirmText(sess), confirmKeyboard())
}

func (a *App) textConfirm(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	switch planner.ParseConfirm(c.Text()) {
	case planner.IntentConfirm:
		return a.completePlan(c)
	case planner.IntentRestart:
		if _, err := a.planner.Restart(ctx, c.Sender().ID); err != nil {
			return a.planError(c, err, render.UnknownInput)
		}
		return tghelpers.SendMD(c, render.DurationPrompt, durationKeyboard())
	default:
		return tghelpers.SendMD(c, render.ConfirmNudge, confirmKeyboard())
	}
}

// --- finalization ---

// completePlan runs the terminal transition: confirm destroys the session,
// the filter selects matching trips, and the finalizer records and delivers
// the plan.
func (a *App) completePlan(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sess, err := a.planner.Confirm(ctx, c.Sender().ID)
	if err != nil {
		return a.planError(c, err, render.ConfirmNudge)
	}

	matches := a.filter.Recommend(ctx, sess.Plan)
	limit := a.cfg.Plan.MaxRecommendations
	names := make([]string, 0, limit)
	for i, m := range matches {
		if limit > 0 && i >= limit {
			break
		}
		names = append(names, m.Record.Name())
	}

	id := tghelpers.SenderIdentity(c)
	plan, err := a.finalizer.Finalize(ctx, sess, finalize.User{
		ID:       id.ID,
		Username: id.Username,
		FullName: id.FullName,
	}, names)

	text := render.Recommendations(matches, limit) + "\n\n"
	if errors.Is(err, finalize.ErrNotificationFailed) {
		return tghelpers.SendMD(c, text+render.FinalizedFollowUp(plan))
	}
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, text+render.Finalized(plan))
}

// --- shared pieces ---

// promptStage re-prompts the current stage without losing answers, used when
// /plan arrives mid-dialogue.
func (a *App) promptStage(c tele.Context, sess planner.Session) error {
	switch sess.Stage {
	case planner.StageChoosingInterests:
		return tghelpers.SendMD(c, render.InterestsPrompt(sess.Plan.Interests), interestKeyboard())
	case planner.StageChoosingBudget:
		return tghelpers.SendMD(c, render.BudgetPrompt, budgetKeyboard())
	case planner.StageConfirming:
		return tghelpers.SendMD(c, confirmText(sess), confirmKeyboard())
	default:
		return tghelpers.SendMD(c, render.DurationPrompt, durationKeyboard())
	}
}

// planError maps planner errors to user-visible re-prompts. Busy and invalid
// inputs are expected dialogue outcomes, not handler failures.
func (a *App) planError(c tele.Context, err error, invalidText string) error {
	switch {
	case errors.Is(err, planner.ErrSessionBusy):
		return tghelpers.SendText(c, render.Busy)
	case errors.Is(err, planner.ErrNoSession):
		return tghelpers.SendText(c, render.StalePlanButton)
	case errors.Is(err, planner.ErrInvalidChoice):
		return tghelpers.SendText(c, invalidText)
	default:
		return err
	}
}

func confirmText(sess planner.Session) string {
	return render.PlanSummary(sess.Plan) + "\n\n" + render.ConfirmNudge
}

// --- keyboards ---

func durationKeyboard() *tele.ReplyMarkup {
	var btns []keyboard.InlineBtn
	for _, b := range planner.DurationBuckets {
		btns = append(btns, keyboard.InlineBtn{Text: b + " days", Unique: cbPlanDuration, Data: b})
	}
	return withCancelRow(chunk(btns, 2))
}

func interestKeyboard() *tele.ReplyMarkup {
	var btns []keyboard.InlineBtn
	for _, tag := range planner.CanonicalInterests {
		btns = append(btns, keyboard.InlineBtn{Text: tag, Unique: cbPlanInterest, Data: tag})
	}
	rows := chunk(btns, 3)
	rows = append(rows, []keyboard.InlineBtn{
		{Text: "✅ Done", Unique: cbPlanDone},
	})
	return withCancelRow(rows)
}

func budgetKeyboard() *tele.ReplyMarkup {
	var btns []keyboard.InlineBtn
	for _, b := range planner.BudgetBuckets {
		btns = append(btns, keyboard.InlineBtn{Text: b, Unique: cbPlanBudget, Data: b})
	}
	return withCancelRow(chunk(btns, 2))
}

func confirmKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "✅ Send to the team", Unique: cbPlanConfirm}},
		[]keyboard.InlineBtn{{Text: "🔄 Start over", Unique: cbPlanRestart}},
		[]keyboard.InlineBtn{{Text: "❌ Cancel", Unique: cbPlanCancel}},
	)
}

func withCancelRow(rows [][]keyboard.InlineBtn) *tele.ReplyMarkup {
	rows = append(rows, []keyboard.InlineBtn{{Text: "❌ Cancel", Unique: cbPlanCancel}})
	return keyboard.InlineButtonsRows(rows...)
}

func chunk(btns []keyboard.InlineBtn, n int) [][]keyboard.InlineBtn {
	var rows [][]keyboard.InlineBtn
	for i := 0; i < len(btns); i += n {
		end := i + n
		if end > len(btns) {
			end = len(btns)
		}
		rows = append(rows, btns[i:end])
	}
	return rows
}
