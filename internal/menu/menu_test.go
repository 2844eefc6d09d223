package menu

import (
	"testing"
	"time"

	"github.com/sweeney/alarm-clock/internal/display"
	"github.com/sweeney/alarm-clock/internal/feedback"
	"github.com/sweeney/alarm-clock/internal/input"
	"github.com/sweeney/alarm-clock/internal/logic"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	c     *Controller
	disp  *display.Recorder
	audio *feedback.FakeAudio
	light *feedback.MemoryLight
	seq   *feedback.Sequencer
	slept []time.Duration
}

func threeTones(t *testing.T) *feedback.Library {
	t.Helper()
	lib, err := feedback.NewLibrary(
		feedback.Ringtone{Name: "Zero", Notes: []feedback.Note{{Hz: 100, Ms: 10}}},
		feedback.Ringtone{Name: "One", Notes: []feedback.Note{{Hz: 200, Ms: 10}}},
		feedback.Ringtone{Name: "Two", Notes: []feedback.Note{{Hz: 300, Ms: 10}, {Hz: 330, Ms: 10}}},
	)
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	return lib
}

func setup(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		disp:  display.NewRecorder(),
		audio: feedback.NewFakeAudio(),
		light: feedback.NewMemoryLight(25),
	}
	h.seq = feedback.NewSequencer(h.audio, h.light)
	h.c = New(Config{
		Display:      h.disp,
		Sequencer:    h.seq,
		Library:      threeTones(t),
		Settings:     logic.DefaultSettings(),
		ConfirmDelay: DefaultConfirmDelay,
	})
	h.c.sleep = func(d time.Duration) { h.slept = append(h.slept, d) }
	return h
}

func (h *harness) press(evs ...input.Event) []logic.Event {
	var out []logic.Event
	for _, ev := range evs {
		out = append(out, h.c.Step(ev, t0)...)
		h.c.Render()
	}
	return out
}

func TestInitialState(t *testing.T) {
	h := setup(t)
	if h.c.Kind() != MainMenu {
		t.Errorf("initial state: got %s, want MAIN_MENU", h.c.Kind())
	}
	if h.c.State().Selected != 0 {
		t.Errorf("initial selection: got %d", h.c.State().Selected)
	}
	if h.c.Settings() != logic.DefaultSettings() {
		t.Errorf("initial settings: got %+v", h.c.Settings())
	}
	if h.light.Brightness() != logic.DefaultBrightness {
		t.Errorf("light brightness: got %d", h.light.Brightness())
	}
}

func TestNewNormalisesSettings(t *testing.T) {
	c := New(Config{
		Library:  threeTones(t),
		Settings: logic.Settings{Ringtone: 7, Brightness: 42},
	})
	s := c.Settings()
	if s.Ringtone != 1 {
		t.Errorf("ringtone: got %d, want 1", s.Ringtone)
	}
	if s.Brightness != logic.MaxBrightness {
		t.Errorf("brightness: got %d", s.Brightness)
	}
}

func TestMainMenuNavigationWraps(t *testing.T) {
	h := setup(t)
	h.press(input.Up)
	if got := h.c.State().Selected; got != len(Entries)-1 {
		t.Errorf("Up from 0: got %d, want %d", got, len(Entries)-1)
	}
	h.press(input.Down)
	if got := h.c.State().Selected; got != 0 {
		t.Errorf("Down from last: got %d, want 0", got)
	}
	h.press(input.Down, input.Down)
	if got := h.c.State().Selected; got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}

func TestMainMenuIgnoresOtherInput(t *testing.T) {
	h := setup(t)
	if evs := h.press(input.Cancel, input.Left, input.Right, input.None); len(evs) != 0 {
		t.Errorf("unexpected events: %+v", evs)
	}
	if h.c.Kind() != MainMenu || h.c.State().Selected != 0 {
		t.Errorf("state changed: %+v", h.c.State())
	}
}

func TestMainMenuConfirmEntersSubmenus(t *testing.T) {
	want := []Kind{AlarmSetup, LightingSetup, RingtoneSetup, ResetConfirm}
	for i, k := range want {
		h := setup(t)
		for j := 0; j < i; j++ {
			h.press(input.Down)
		}
		h.press(input.Confirm)
		if h.c.Kind() != k {
			t.Errorf("entry %d: got %s, want %s", i, h.c.Kind(), k)
		}
	}
}

func TestAlarmSetupEditAndCommit(t *testing.T) {
	h := setup(t)
	h.press(input.Confirm) // AlarmSetup, seeded 07:00

	h.press(input.Up, input.Up)      // 09:00
	h.press(input.Right, input.Down) // 09:59
	h.press(input.Left, input.Down)  // 08:59
	evs := h.press(input.Confirm)

	if h.c.Kind() != MainMenu {
		t.Fatalf("after confirm: got %s, want MAIN_MENU", h.c.Kind())
	}
	a := h.c.Alarm()
	if a.Hour() != 8 || a.Minute() != 59 || !a.Enabled() {
		t.Errorf("alarm: got %s enabled=%v, want 08:59 enabled", a, a.Enabled())
	}
	if len(evs) != 1 || evs[0].Type != logic.EventAlarmSet {
		t.Fatalf("events: got %+v", evs)
	}
	if evs[0].Settings.Alarm != a {
		t.Error("event should carry the committed alarm")
	}
	if !evs[0].Timestamp.Equal(t0) {
		t.Errorf("event timestamp: got %v", evs[0].Timestamp)
	}
}

func TestAlarmSetupWrapsWithoutCarry(t *testing.T) {
	h := setup(t)
	h.press(input.Confirm)
	h.press(input.Down, input.Down, input.Down, input.Down, input.Down, input.Down, input.Down, input.Down)
	if got := h.c.State().Alarm.Hour(); got != 23 {
		t.Errorf("hour: got %d, want 23", got)
	}
	h.press(input.Right, input.Down)
	st := h.c.State().Alarm
	if st.Minute() != 59 || st.Hour() != 23 {
		t.Errorf("minute wrap should not carry: got %s", st)
	}
}

func TestAlarmSetupCancelDiscards(t *testing.T) {
	h := setup(t)
	h.press(input.Confirm, input.Up, input.Up)
	evs := h.press(input.Cancel)

	if h.c.Kind() != MainMenu {
		t.Errorf("got %s, want MAIN_MENU", h.c.Kind())
	}
	if len(evs) != 0 {
		t.Errorf("cancel should not emit events: %+v", evs)
	}
	if h.c.Alarm() != logic.DefaultSettings().Alarm {
		t.Errorf("alarm changed on cancel: %s", h.c.Alarm())
	}
	if len(h.slept) != 0 {
		t.Error("cancel should not show a confirmation")
	}
}

func TestAlarmSetupSeededFromSettings(t *testing.T) {
	h := setup(t)
	h.press(input.Confirm, input.Up, input.Confirm) // 08:00
	h.press(input.Confirm)                          // back into AlarmSetup

	st := h.c.State()
	if st.Alarm.Hour() != 8 || st.Alarm.Minute() != 0 {
		t.Errorf("edit state: got %s, want 08:00", st.Alarm)
	}
	if st.Field != FieldHour {
		t.Error("edit should start on the hour field")
	}
}

func TestConfirmationMessage(t *testing.T) {
	h := setup(t)
	h.press(input.Confirm)
	h.disp.Reset()
	h.c.Step(input.Confirm, t0)

	if len(h.slept) != 1 || h.slept[0] != DefaultConfirmDelay {
		t.Errorf("expected one %v confirmation, got %v", DefaultConfirmDelay, h.slept)
	}
	if !h.disp.Visible("Alarm set") {
		t.Error("confirmation text not shown")
	}
}

func TestLightingSetup(t *testing.T) {
	h := setup(t)
	h.press(input.Down, input.Confirm)
	if h.c.State().Level != logic.DefaultBrightness {
		t.Fatalf("level seeded: got %d", h.c.State().Level)
	}

	for i := 0; i < 20; i++ {
		h.press(input.Up)
	}
	if h.c.State().Level != logic.MaxBrightness {
		t.Errorf("level clamp high: got %d", h.c.State().Level)
	}
	for i := 0; i < 20; i++ {
		h.press(input.Down)
	}
	if h.c.State().Level != logic.MinBrightness {
		t.Errorf("level clamp low: got %d", h.c.State().Level)
	}

	h.press(input.Up, input.Up) // 3
	evs := h.press(input.Confirm)
	if h.c.Settings().Brightness != 3 {
		t.Errorf("brightness: got %d, want 3", h.c.Settings().Brightness)
	}
	if h.light.Brightness() != 3 {
		t.Errorf("light: got %d, want 3", h.light.Brightness())
	}
	if len(evs) != 1 || evs[0].Type != logic.EventBrightnessSet {
		t.Errorf("events: got %+v", evs)
	}
}

func TestLightingCancelDiscards(t *testing.T) {
	h := setup(t)
	h.press(input.Down, input.Confirm, input.Up, input.Cancel)
	if h.c.Settings().Brightness != logic.DefaultBrightness {
		t.Errorf("brightness changed on cancel: %d", h.c.Settings().Brightness)
	}
}

func TestRingtoneSetupWraps(t *testing.T) {
	h := setup(t)
	h.press(input.Down, input.Down, input.Confirm)
	h.press(input.Up)
	if got := h.c.State().Selected; got != 2 {
		t.Errorf("Up from 0: got %d, want 2", got)
	}
	h.press(input.Down)
	if got := h.c.State().Selected; got != 0 {
		t.Errorf("Down from 2: got %d, want 0", got)
	}
}

func TestRingtoneSetupCommit(t *testing.T) {
	h := setup(t)
	h.press(input.Down, input.Down, input.Confirm, input.Down, input.Down)
	evs := h.press(input.Confirm)

	if h.c.Settings().Ringtone != 2 {
		t.Errorf("ringtone: got %d, want 2", h.c.Settings().Ringtone)
	}
	if len(evs) != 1 || evs[0].Type != logic.EventRingtoneSet || evs[0].Ringtone != "Two" {
		t.Errorf("events: got %+v", evs)
	}
	if h.c.Ringtone().Name != "Two" {
		t.Errorf("Ringtone(): got %q", h.c.Ringtone().Name)
	}
}

func TestRingtoneSetupCancelDiscards(t *testing.T) {
	h := setup(t)
	h.press(input.Down, input.Down, input.Confirm, input.Down, input.Cancel)
	if h.c.Settings().Ringtone != 0 {
		t.Errorf("ringtone changed on cancel: %d", h.c.Settings().Ringtone)
	}
}

func enterReset(h *harness) {
	for h.c.State().Selected != 3 {
		h.press(input.Down)
	}
	h.press(input.Confirm)
}

func TestResetConfirmDefaultsToNo(t *testing.T) {
	h := setup(t)
	h.press(input.Confirm, input.Up, input.Confirm) // alarm 08:00 enabled
	enterReset(h)
	if h.c.State().Yes {
		t.Fatal("reset choice should start at no")
	}
	evs := h.press(input.Confirm)
	if len(evs) != 0 {
		t.Errorf("confirm with no should not emit: %+v", evs)
	}
	if !h.c.Alarm().Enabled() {
		t.Error("settings should be kept when choosing no")
	}
}

func TestResetConfirmYes(t *testing.T) {
	h := setup(t)
	h.press(input.Confirm, input.Up, input.Confirm)                           // alarm 08:00 enabled
	h.press(input.Down, input.Down, input.Confirm, input.Down, input.Confirm) // ringtone 1
	h.press(input.Up, input.Confirm, input.Up, input.Confirm)                 // brightness 5

	enterReset(h)
	h.press(input.Down)
	if !h.c.State().Yes {
		t.Fatal("Down should toggle to yes")
	}
	evs := h.press(input.Confirm)

	if h.c.Settings() != logic.DefaultSettings() {
		t.Errorf("settings: got %+v, want defaults", h.c.Settings())
	}
	if h.c.Alarm().Enabled() {
		t.Error("alarm should be disabled after reset")
	}
	if h.light.Brightness() != logic.DefaultBrightness {
		t.Errorf("light brightness not reset: %d", h.light.Brightness())
	}
	if len(evs) != 1 || evs[0].Type != logic.EventSettingsReset {
		t.Errorf("events: got %+v", evs)
	}
}

func TestResetIdempotent(t *testing.T) {
	h := setup(t)
	h.press(input.Confirm, input.Up, input.Confirm)

	enterReset(h)
	h.press(input.Up, input.Confirm)
	once := h.c.Settings()

	enterReset(h)
	h.press(input.Up, input.Confirm)
	twice := h.c.Settings()

	if once != twice {
		t.Errorf("reset not idempotent: %+v vs %+v", once, twice)
	}
}

func TestResetRestoresConfiguredSettings(t *testing.T) {
	h := setup(t)
	startup := logic.Settings{
		Alarm:      logic.NewAlarmConfig(6, 15, true),
		Ringtone:   2,
		Brightness: 8,
	}
	h.c = New(Config{
		Display:      h.disp,
		Sequencer:    h.seq,
		Library:      threeTones(t),
		Settings:     startup,
		ConfirmDelay: DefaultConfirmDelay,
	})
	h.c.sleep = func(time.Duration) {}

	h.press(input.Confirm, input.Up, input.Confirm)                           // alarm 07:15
	h.press(input.Down, input.Down, input.Confirm, input.Down, input.Confirm) // ringtone 0
	if h.c.Settings() == startup {
		t.Fatal("settings should have changed before reset")
	}

	enterReset(h)
	h.press(input.Down, input.Confirm)

	want := startup
	want.Alarm = startup.Alarm.WithEnabled(false)
	if got := h.c.Settings(); got != want {
		t.Errorf("settings: got %+v, want %+v", got, want)
	}
	if h.c.Alarm().Hour() != 6 || h.c.Alarm().Minute() != 15 {
		t.Errorf("alarm: got %s, want configured 06:15", h.c.Alarm())
	}
	if h.light.Brightness() != 8 {
		t.Errorf("light brightness: got %d, want 8", h.light.Brightness())
	}
}

func TestResetCancel(t *testing.T) {
	h := setup(t)
	h.press(input.Confirm, input.Up, input.Confirm)
	enterReset(h)
	h.press(input.Up, input.Cancel)
	if !h.c.Alarm().Enabled() {
		t.Error("cancel should keep settings")
	}
}

func TestTriggerAlarm(t *testing.T) {
	h := setup(t)
	e, ok := h.c.TriggerAlarm(t0)
	if !ok {
		t.Fatal("trigger from main menu should succeed")
	}
	if h.c.Kind() != AlarmTriggered {
		t.Errorf("got %s, want ALARM_TRIGGERED", h.c.Kind())
	}
	if !h.seq.Active() {
		t.Error("sequencer should be active")
	}
	if e.Type != logic.EventAlarmTriggered || e.SessionID == "" || e.SessionID != h.seq.SessionID() {
		t.Errorf("event: got %+v", e)
	}
	if e.Ringtone != "Zero" {
		t.Errorf("ringtone: got %q", e.Ringtone)
	}
}

func TestTriggerAlarmIgnoredOutsideMainMenu(t *testing.T) {
	h := setup(t)
	h.press(input.Confirm)
	if _, ok := h.c.TriggerAlarm(t0); ok {
		t.Error("trigger should be refused in AlarmSetup")
	}
	if h.c.Kind() != AlarmSetup || h.seq.Active() {
		t.Error("state must not change")
	}
}

func TestAlarmTriggeredOnlyCancelLeaves(t *testing.T) {
	h := setup(t)
	h.c.TriggerAlarm(t0)

	h.press(input.Confirm, input.Up, input.Down, input.Left, input.Right, input.None)
	if h.c.Kind() != AlarmTriggered {
		t.Fatalf("got %s, want ALARM_TRIGGERED", h.c.Kind())
	}

	session := h.seq.SessionID()
	evs := h.press(input.Cancel)
	if h.c.Kind() != MainMenu {
		t.Errorf("got %s, want MAIN_MENU", h.c.Kind())
	}
	if h.seq.Active() {
		t.Error("sequencer should be stopped")
	}
	if h.audio.Stops == 0 {
		t.Error("audio should be silenced")
	}
	if h.light.Lit() {
		t.Error("light should be blank")
	}
	if len(evs) != 1 || evs[0].Type != logic.EventAlarmCancelled || evs[0].SessionID != session {
		t.Errorf("events: got %+v", evs)
	}
}

func TestTriggeredPlaysSelectedRingtone(t *testing.T) {
	h := setup(t)
	h.press(input.Down, input.Down, input.Confirm, input.Down, input.Down, input.Confirm)
	h.c.TriggerAlarm(t0)

	if got := h.seq.Ringtone().Name; got != "Two" {
		t.Errorf("playing %q, want Two", got)
	}
}

func TestRenderClearsOnlyOnEntry(t *testing.T) {
	h := setup(t)
	h.c.Render()
	if h.disp.Clears() != 1 {
		t.Fatalf("first render: got %d clears, want 1", h.disp.Clears())
	}
	if h.disp.TextAt(labelX, 0) != "1 Alarm" {
		t.Errorf("row 0: got %q", h.disp.TextAt(labelX, 0))
	}
	if h.disp.TextAt(0, 0) != ">" {
		t.Errorf("marker: got %q", h.disp.TextAt(0, 0))
	}

	h.disp.Reset()
	h.c.Step(input.None, t0)
	h.c.Render()
	if len(h.disp.Ops) != 0 {
		t.Errorf("unchanged screen redrawn: %v", h.disp.Ops)
	}

	h.c.Step(input.Down, t0)
	h.c.Render()
	if h.disp.Clears() != 0 {
		t.Error("selection change must not clear")
	}
	if h.disp.TextAt(0, 0) != " " || h.disp.TextAt(0, rowHeight) != ">" {
		t.Error("marker did not move")
	}
	if h.disp.Draws() != 2 {
		t.Errorf("expected only the two markers redrawn, got %v", h.disp.Ops)
	}

	h.disp.Reset()
	h.c.Step(input.Confirm, t0)
	h.c.Render()
	if h.disp.Clears() != 1 {
		t.Errorf("state entry: got %d clears, want 1", h.disp.Clears())
	}
}

func TestRenderFooterClock(t *testing.T) {
	h := setup(t)
	h.c.Render()
	if !h.disp.Visible("Press A") {
		t.Error("without a clock the footer should prompt")
	}

	h.c.SetClock(logic.NewTimestamp(6, 59, 58), true)
	h.disp.Reset()
	h.c.Render()
	if !h.disp.Visible("06:59:58  A off") {
		t.Errorf("footer: got %q", h.disp.TextAt(0, footerY))
	}
	if h.disp.Draws() != 1 {
		t.Errorf("only the footer should be redrawn, got %v", h.disp.Ops)
	}
}

func TestRenderAlarmCaretBlinks(t *testing.T) {
	h := setup(t)
	h.press(input.Confirm)

	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		h.c.Step(input.None, t0)
		h.c.Render()
		seen[h.disp.TextAt(hourCaretX, caretY)] = true
		if h.disp.TextAt(minCaretX, caretY) == "^" {
			t.Error("minute caret shown while editing hour")
		}
	}
	if !seen["^"] || !seen[" "] {
		t.Errorf("caret should toggle, saw %v", seen)
	}
}

func TestRenderSeparatorOnEntry(t *testing.T) {
	h := setup(t)
	h.c.Render()
	found := false
	for _, op := range h.disp.Ops {
		if op.Kind == "line" && op.Y == separatorY && op.Y2 == separatorY {
			found = true
		}
	}
	if !found {
		t.Error("separator line not drawn")
	}
}

func TestRenderTriggeredScreen(t *testing.T) {
	h := setup(t)
	h.c.TriggerAlarm(t0)
	h.c.Render()
	if !h.disp.Visible("ALARM") || !h.disp.Visible("07:00") {
		t.Error("alarm screen not shown")
	}
}

func TestRenderRingtoneSelectionVisible(t *testing.T) {
	c := New(Config{Display: display.NewRecorder(), Settings: logic.DefaultSettings()})
	c.sleep = func(time.Duration) {}
	for _, ev := range []input.Event{input.Down, input.Down, input.Confirm, input.Up} {
		c.Step(ev, t0)
	}
	// Last of the four built-in ringtones selected; it must be on screen
	v := c.view()
	found := false
	for i := 0; i < v.n; i++ {
		if v.items[i].text == ">" {
			found = true
		}
	}
	if !found {
		t.Error("selected ringtone not visible")
	}
}

func TestKindString(t *testing.T) {
	if AlarmTriggered.String() != "ALARM_TRIGGERED" || Kind(99).String() != "UNKNOWN" {
		t.Error("unexpected Kind strings")
	}
}
