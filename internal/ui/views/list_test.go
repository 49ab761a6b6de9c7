package views

import (
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dori/taskdeck/internal/api"
	"github.com/dori/taskdeck/internal/model"
	"github.com/dori/taskdeck/internal/testutil"
	"github.com/dori/taskdeck/internal/ui/debounce"
	"github.com/dori/taskdeck/internal/ui/dialog"
	"github.com/dori/taskdeck/internal/ui/theme"
)

func TestMain(m *testing.M) {
	theme.DisableColor()
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) NotifySuccess(msg string) tea.Cmd {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
	return nil
}

func (n *recordingNotifier) NotifyError(msg string) tea.Cmd {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
	return nil
}

func (n *recordingNotifier) lastError() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.errors) == 0 {
		return ""
	}
	return n.errors[len(n.errors)-1]
}

func newTestList(fake *testutil.FakeAPI) (ListView, *recordingNotifier) {
	n := &recordingNotifier{}
	v := NewListView(fake, n, ListOptions{PageSize: 3, SearchDebounce: time.Millisecond})
	return v, n
}

func update(v ListView, msg tea.Msg) (ListView, tea.Cmd) {
	m, cmd := v.Update(msg)
	return m.(ListView), cmd
}

// run executes cmd and any batched commands, returning their messages in order
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// feedable reports whether settle should deliver msg back to the view.
// Cursor blink messages are left out; they never stop.
func feedable(msg tea.Msg) bool {
	switch msg.(type) {
	case RefreshMsg, tasksLoadedMsg, statsLoadedMsg, taskCreatedMsg, taskUpdatedMsg,
		taskDeletedMsg, debounce.Msg, dialog.ConfirmResultMsg, dialog.EditResultMsg:
		return true
	}
	return false
}

// settle runs cmd and delivers its messages until no work is left
func settle(t *testing.T, v ListView, cmd tea.Cmd) ListView {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 20 {
			t.Fatal("commands did not settle")
		}
		var next []tea.Cmd
		for _, msg := range run(cmd) {
			if !feedable(msg) {
				continue
			}
			var c tea.Cmd
			v, c = update(v, msg)
			if c != nil {
				next = append(next, c)
			}
		}
		cmd = nil
		if len(next) > 0 {
			cmd = tea.Batch(next...)
		}
	}
	return v
}

func started(t *testing.T, fake *testutil.FakeAPI) (ListView, *recordingNotifier) {
	t.Helper()
	v, n := newTestList(fake)
	return settle(t, v, v.Init()), n
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func titles(items []model.Task) []string {
	var out []string
	for _, t := range items {
		out = append(out, t.Title)
	}
	return out
}

func TestInitLoadsListAndStats(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Seed("Low", 2, model.PriorityLow)
	fake.Seed("High", 1, model.PriorityHigh)

	v, _ := started(t, fake)

	if v.Phase() != PhaseRendered {
		t.Errorf("Phase() = %v, want Rendered", v.Phase())
	}
	if len(v.Page().Items) != 3 {
		t.Errorf("expected 3 tasks, got %d", len(v.Page().Items))
	}
	stats, ok := v.Stats()
	if !ok || stats.Total != 3 || stats.High != 1 || stats.Low != 2 {
		t.Errorf("Stats() = %+v, %v", stats, ok)
	}
	if v.Loading() {
		t.Error("still loading after settle")
	}
}

func TestLastQueryWinsRegardlessOfArrivalOrder(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Seed("Low", 5, model.PriorityLow)
	fake.Seed("High", 5, model.PriorityHigh)

	orders := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2},
		{1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}

	for _, order := range orders {
		v, _ := newTestList(fake)

		var cmds [3]tea.Cmd
		v, cmds[0] = v.SetFilter(model.FilterHigh)
		v, cmds[1] = v.SetFilter(model.FilterLow)
		v, cmds[2] = v.GoToNextPage()

		if !v.Loading() {
			t.Fatal("expected loading while requests are in flight")
		}

		var msgs [3]tea.Msg
		for i, c := range cmds {
			msgs[i] = c()
		}
		for _, i := range order {
			v, _ = update(v, msgs[i])
		}

		q := v.Query()
		if q.Filter != model.FilterLow || q.Page != 2 {
			t.Fatalf("order %v: query = %+v", order, q)
		}
		page := v.Page()
		if page.Pagination.CurrentPage != 2 {
			t.Errorf("order %v: rendered page %d, want 2", order, page.Pagination.CurrentPage)
		}
		if len(page.Items) != 2 {
			t.Errorf("order %v: got %d items, want 2", order, len(page.Items))
		}
		for _, task := range page.Items {
			if task.Priority != model.PriorityLow {
				t.Errorf("order %v: stale %s task rendered: %q", order, task.Priority, task.Title)
			}
		}
		if v.Loading() {
			t.Errorf("order %v: loading after all responses settled", order)
		}
		if v.Phase() != PhaseRendered {
			t.Errorf("order %v: phase = %v", order, v.Phase())
		}
	}
}

func TestStaleFailureIsIgnored(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Seed("Task", 4, model.PriorityMedium)
	v, n := newTestList(fake)

	fake.ListErr = errors.New("boom")
	v, first := v.RefreshList()
	failed := first()
	fake.ListErr = nil
	v, second := v.RefreshList()

	v, _ = update(v, second())
	v, _ = update(v, failed)

	if v.Phase() != PhaseRendered {
		t.Errorf("Phase() = %v, want Rendered", v.Phase())
	}
	if len(n.errors) != 0 {
		t.Errorf("stale failure produced toast %v", n.errors)
	}
	if len(v.Page().Items) != 3 {
		t.Errorf("expected 3 items, got %d", len(v.Page().Items))
	}
}

func TestSearchDebounceIssuesOneRequest(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Add("Buy milk", model.PriorityLow)
	fake.Add("Buy bread", model.PriorityLow)
	fake.Add("Walk dog", model.PriorityLow)
	v, _ := newTestList(fake)

	var cmds []tea.Cmd
	for _, text := range []string{"b", "bu", "buy", "buy m", "  buy mi  "} {
		var cmd tea.Cmd
		v, cmd = v.SetSearch(text)
		cmds = append(cmds, cmd)
	}

	var fetches []tea.Cmd
	for _, c := range cmds {
		for _, msg := range run(c) {
			var fetch tea.Cmd
			v, fetch = update(v, msg)
			if fetch != nil {
				fetches = append(fetches, fetch)
			}
		}
	}

	if len(fetches) != 1 {
		t.Fatalf("expected exactly one list request, got %d", len(fetches))
	}
	if calls := fake.Calls().List; calls != 0 {
		t.Fatalf("list requested before the debounce fired: %d", calls)
	}

	v = settle(t, v, fetches[0])

	queries := fake.Queries()
	if len(queries) != 1 {
		t.Fatalf("expected one ListTasks call, got %d", len(queries))
	}
	if queries[0].SearchText != "buy mi" || queries[0].Page != 1 {
		t.Errorf("query = %+v, want trimmed final text on page 1", queries[0])
	}
	if got := titles(v.Page().Items); len(got) != 1 || got[0] != "Buy milk" {
		t.Errorf("rendered %v, want [Buy milk]", got)
	}
}

func TestSearchResetsPage(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Seed("Task", 8, model.PriorityLow)
	v, _ := started(t, fake)

	v, cmd := v.GoToNextPage()
	v = settle(t, v, cmd)
	if v.Query().Page != 2 {
		t.Fatalf("page = %d, want 2", v.Query().Page)
	}

	v, cmd = v.SetSearch("task")
	v = settle(t, v, cmd)
	if v.Query().Page != 1 || v.Query().SearchText != "task" {
		t.Errorf("query = %+v, want page 1 with search", v.Query())
	}
}

func TestCreateTaskInvalidTitleStaysLocal(t *testing.T) {
	fake := testutil.NewFakeAPI()
	v, n := newTestList(fake)

	v, _ = update(v, keyMsg("a"))
	v, _ = update(v, keyMsg("ab"))
	v, cmd := update(v, keyMsg("enter"))

	if cmd != nil {
		run(cmd)
	}
	if calls := fake.Network(); calls != 0 {
		t.Fatalf("invalid title made %d network calls", calls)
	}
	if v.FormTitle() != "ab" {
		t.Errorf("form title = %q, want ab", v.FormTitle())
	}
	if v.Mode() != ListModeAdd {
		t.Error("form should stay open")
	}
	want := "Title must be at least 3 characters"
	if v.FormError() != want {
		t.Errorf("form error = %q, want %q", v.FormError(), want)
	}
	if n.lastError() != want {
		t.Errorf("toast = %q, want %q", n.lastError(), want)
	}
	if !strings.Contains(v.View(), want) {
		t.Error("inline error not rendered")
	}
}

func TestCreateTaskDirectCallValidates(t *testing.T) {
	fake := testutil.NewFakeAPI()
	v, _ := newTestList(fake)

	for _, title := range []string{"", "   ", "ab", strings.Repeat("x", 101)} {
		var cmd tea.Cmd
		v, cmd = v.CreateTask(title, model.PriorityLow)
		settle(t, v, cmd)
	}
	if calls := fake.Network(); calls != 0 {
		t.Errorf("invalid titles made %d network calls", calls)
	}
}

func TestCreateTaskSuccess(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Seed("Old", 7, model.PriorityLow)
	v, n := started(t, fake)

	var cmd tea.Cmd
	v, cmd = v.GoToNextPage()
	v = settle(t, v, cmd)
	if v.Query().Page != 2 {
		t.Fatalf("setup: page = %d", v.Query().Page)
	}
	listBefore := fake.Calls().List

	v, _ = update(v, keyMsg("a"))
	v, _ = update(v, keyMsg("Buy milk"))
	v, _ = update(v, keyMsg("tab"))
	v, _ = update(v, keyMsg("tab"))
	if v.FormPriority() != model.PriorityHigh {
		t.Fatalf("priority = %s, want alta", v.FormPriority())
	}

	v, cmd = update(v, keyMsg("enter"))
	v = settle(t, v, cmd)

	if c := fake.Calls(); c.Create != 1 || c.List != listBefore+1 {
		t.Errorf("calls = %+v, want one create and one list", c)
	}
	if v.FormTitle() != "" || v.FormPriority() != model.PriorityLow || v.FormError() != "" {
		t.Errorf("form not cleared: %q %s %q", v.FormTitle(), v.FormPriority(), v.FormError())
	}
	if v.Query().Page != 1 {
		t.Errorf("page = %d, want 1", v.Query().Page)
	}
	if v.Mode() != ListModeNormal {
		t.Error("form should close after success")
	}
	if got := v.Page().Items[0]; got.Title != "Buy milk" || got.Priority != model.PriorityHigh {
		t.Errorf("first item = %+v", got)
	}
	if len(n.successes) != 1 || n.successes[0] != MsgCreated {
		t.Errorf("successes = %v", n.successes)
	}
}

func TestCreateTaskServerRejection(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Add("Buy milk", model.PriorityLow)
	v, n := started(t, fake)

	v, _ = update(v, keyMsg("a"))
	v, _ = update(v, keyMsg("BUY MILK"))
	v, cmd := update(v, keyMsg("enter"))
	v = settle(t, v, cmd)

	if v.FormTitle() != "BUY MILK" || v.Mode() != ListModeAdd {
		t.Errorf("form changed after rejection: %q mode %v", v.FormTitle(), v.Mode())
	}
	if n.lastError() != "a task with this title already exists" {
		t.Errorf("toast = %q", n.lastError())
	}

	fake.CreateErr = &api.TransportError{Method: "POST", Path: "/tasks", Err: errors.New("refused")}
	v, cmd = update(v, keyMsg("enter"))
	v = settle(t, v, cmd)
	if n.lastError() != MsgCreateFailed {
		t.Errorf("toast = %q, want fallback", n.lastError())
	}
	if v.FormError() != MsgCreateFailed {
		t.Errorf("form error = %q", v.FormError())
	}
}

func TestDeleteDeclinedDoesNothing(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Seed("Task", 3, model.PriorityLow)
	v, n := started(t, fake)

	before := v.RenderTasks(v.Page().Items)
	calls := fake.Network()
	target := v.Page().Items[1]

	v, cmd := v.DeleteTask(target.ID)
	if cmd != nil {
		t.Error("opening the dialog should not issue a command")
	}
	if v.Mode() != ListModeConfirmDelete {
		t.Fatal("confirm dialog not open")
	}
	if !strings.Contains(v.View(), target.Title) {
		t.Error("dialog should name the task")
	}

	v, cmd = update(v, keyMsg("n"))
	v = settle(t, v, cmd)

	if fake.Network() != calls {
		t.Errorf("declined delete made %d network calls", fake.Network()-calls)
	}
	if v.Mode() != ListModeNormal {
		t.Error("dialog should close")
	}
	if got := v.RenderTasks(v.Page().Items); got != before {
		t.Error("rendered list changed")
	}
	if len(n.successes)+len(n.errors) != 0 {
		t.Error("declined delete should not notify")
	}
}

func TestDeleteAccepted(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Seed("Task", 3, model.PriorityLow)
	v, n := started(t, fake)
	target := v.Page().Items[0]

	v, _ = v.DeleteTask(target.ID)
	v, cmd := update(v, keyMsg("y"))
	v = settle(t, v, cmd)

	if fake.Calls().Delete != 1 {
		t.Fatalf("delete calls = %d", fake.Calls().Delete)
	}
	for _, task := range v.Page().Items {
		if task.ID == target.ID {
			t.Error("deleted task still rendered")
		}
	}
	if len(n.successes) != 1 || n.successes[0] != MsgDeleted {
		t.Errorf("successes = %v", n.successes)
	}
}

func TestDeleteFailureKeepsList(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Seed("Task", 3, model.PriorityLow)
	v, n := started(t, fake)
	before := titles(v.Page().Items)
	listCalls := fake.Calls().List

	fake.DeleteErr = errors.New("network down")
	v, _ = v.DeleteTask(v.Page().Items[0].ID)
	v, cmd := update(v, keyMsg("y"))
	v = settle(t, v, cmd)

	if n.lastError() != MsgDeleteFailed {
		t.Errorf("toast = %q", n.lastError())
	}
	if fake.Calls().List != listCalls {
		t.Error("failed delete should not refresh")
	}
	if got := titles(v.Page().Items); strings.Join(got, ",") != strings.Join(before, ",") {
		t.Errorf("list changed: %v", got)
	}
}

func TestEditTask(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Add("Write report", model.PriorityLow)
	fake.Add("Taken", model.PriorityLow)
	v, n := started(t, fake)

	target := v.Page().Items[1]
	v, _ = v.EditTask(target.ID, target.Title, target.Priority)
	if v.Mode() != ListModeEdit {
		t.Fatal("edit dialog not open")
	}

	v, _ = update(v, keyMsg(" v2"))
	v, _ = update(v, keyMsg("tab"))
	v, cmd := update(v, keyMsg("enter"))
	v = settle(t, v, cmd)

	if fake.Calls().Update != 1 {
		t.Fatalf("update calls = %d", fake.Calls().Update)
	}
	var found bool
	for _, task := range v.Page().Items {
		if task.ID == target.ID {
			found = true
			if task.Title != "Write report v2" || task.Priority != model.PriorityMedium {
				t.Errorf("task after edit = %+v", task)
			}
		}
	}
	if !found {
		t.Error("edited task missing")
	}
	if len(n.successes) != 1 || n.successes[0] != MsgUpdated {
		t.Errorf("successes = %v", n.successes)
	}
	if v.Mode() != ListModeNormal {
		t.Error("dialog should close")
	}
}

func TestEditTaskInvalidStaysOpen(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Add("Write report", model.PriorityLow)
	v, _ := started(t, fake)
	target := v.Page().Items[0]
	calls := fake.Network()

	v, _ = v.EditTask(target.ID, "ab", target.Priority)
	v, cmd := update(v, keyMsg("enter"))
	v = settle(t, v, cmd)

	if v.Mode() != ListModeEdit {
		t.Error("dialog closed with an invalid title")
	}
	if fake.Network() != calls {
		t.Error("invalid edit reached the network")
	}
}

func TestEditTaskServerMessage(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Add("Write report", model.PriorityLow)
	v, n := started(t, fake)
	target := v.Page().Items[0]

	fake.UpdateErr = &api.Error{StatusCode: http.StatusConflict, Message: "a task with this title already exists"}
	v, _ = v.EditTask(target.ID, "Something else", target.Priority)
	v, cmd := update(v, keyMsg("enter"))
	v = settle(t, v, cmd)

	if n.lastError() != "a task with this title already exists" {
		t.Errorf("toast = %q", n.lastError())
	}

	fake.UpdateErr = &api.Error{StatusCode: http.StatusInternalServerError}
	v, _ = v.EditTask(target.ID, "Something else", target.Priority)
	v, cmd = update(v, keyMsg("enter"))
	settle(t, v, cmd)
	if n.lastError() != MsgUpdateFailed {
		t.Errorf("toast = %q, want fallback", n.lastError())
	}
}

func TestLoadingIndicatorSuccessAndFailure(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Seed("Task", 2, model.PriorityLow)
	v, n := newTestList(fake)

	if v.Loading() {
		t.Fatal("loading before any request")
	}

	v, cmd := v.RefreshList()
	if !v.Loading() || v.Phase() != PhaseLoading {
		t.Fatal("not loading after request start")
	}
	msg := cmd()
	if !v.Loading() {
		t.Fatal("loading cleared before the response was delivered")
	}
	v, _ = update(v, msg)
	if v.Loading() || v.Phase() != PhaseRendered {
		t.Fatalf("after success: loading=%v phase=%v", v.Loading(), v.Phase())
	}
	rendered := titles(v.Page().Items)

	fake.ListErr = &api.Error{StatusCode: http.StatusInternalServerError}
	v, cmd = v.RefreshList()
	if !v.Loading() {
		t.Fatal("not loading after second request start")
	}
	v, _ = update(v, cmd())
	if v.Loading() || v.Phase() != PhaseErrorShown {
		t.Fatalf("after failure: loading=%v phase=%v", v.Loading(), v.Phase())
	}
	if n.lastError() != MsgLoadFailed {
		t.Errorf("toast = %q, want %q", n.lastError(), MsgLoadFailed)
	}
	if got := titles(v.Page().Items); strings.Join(got, ",") != strings.Join(rendered, ",") {
		t.Error("failure replaced the previous page")
	}
}

func TestLoadingCoversOverlappingRequests(t *testing.T) {
	fake := testutil.NewFakeAPI()
	v, _ := newTestList(fake)

	v, first := v.RefreshList()
	v, second := v.RefreshList()

	v, _ = update(v, first())
	if !v.Loading() {
		t.Error("loading cleared while a newer request is in flight")
	}
	v, _ = update(v, second())
	if v.Loading() {
		t.Error("loading still set after every request settled")
	}
}

func TestLoadFailureShowsServerMessage(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.ListErr = &api.Error{StatusCode: http.StatusBadRequest, Message: "invalid pagination parameters"}
	v, n := newTestList(fake)

	settle(t, v, v.Init())
	if n.lastError() != "invalid pagination parameters" {
		t.Errorf("toast = %q", n.lastError())
	}
}

func TestStatsFailureKeepsPreviousStats(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Seed("Task", 2, model.PriorityHigh)
	v, n := started(t, fake)

	fake.Add("Another", model.PriorityLow)
	fake.StatsErr = errors.New("stats down")
	v, cmd := v.RefreshList()
	v = settle(t, v, cmd)

	stats, ok := v.Stats()
	if !ok || stats.Total != 2 {
		t.Errorf("Stats() = %+v, %v; want previous totals", stats, ok)
	}
	if len(n.errors) != 0 {
		t.Errorf("stats failure should only be logged, got toasts %v", n.errors)
	}
}

func TestStaleStatsDropped(t *testing.T) {
	fake := testutil.NewFakeAPI()
	v, _ := newTestList(fake)

	v, first := v.refreshStats()
	old := first()
	fake.Add("New task", model.PriorityLow)
	v, second := v.refreshStats()

	v, _ = update(v, second())
	v, _ = update(v, old)

	stats, _ := v.Stats()
	if stats.Total != 1 {
		t.Errorf("stale stats applied: %+v", stats)
	}
}

func TestPrevPageAtFirstPageIsNoop(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Seed("Task", 5, model.PriorityLow)
	v, _ := started(t, fake)

	calls := fake.Network()
	before := v.Query()

	after, cmd := v.GoToPrevPage()
	if cmd != nil {
		t.Error("GoToPrevPage at page 1 returned a command")
	}
	if after.Query() != before {
		t.Errorf("query changed: %+v -> %+v", before, after.Query())
	}
	if after.Loading() || after.Phase() != v.Phase() {
		t.Error("state changed")
	}
	if fake.Network() != calls {
		t.Error("network call made")
	}
}

func TestPagingKeysFollowServerFlags(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Seed("Task", 4, model.PriorityLow)
	v, _ := started(t, fake)

	v, cmd := update(v, keyMsg("l"))
	v = settle(t, v, cmd)
	if v.Query().Page != 2 {
		t.Fatalf("page = %d after next", v.Query().Page)
	}

	calls := fake.Network()
	v, cmd = update(v, keyMsg("l"))
	if cmd != nil || fake.Network() != calls {
		t.Error("next on the last page should do nothing")
	}

	v, cmd = update(v, keyMsg("h"))
	v = settle(t, v, cmd)
	if v.Query().Page != 1 {
		t.Errorf("page = %d after prev", v.Query().Page)
	}
}

func TestFilterKeys(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Seed("Low", 2, model.PriorityLow)
	fake.Seed("Med", 2, model.PriorityMedium)
	v, _ := started(t, fake)

	v, cmd := update(v, keyMsg("2"))
	v = settle(t, v, cmd)
	if v.Query().Filter != model.FilterMedium {
		t.Fatalf("filter = %v", v.Query().Filter)
	}
	for _, task := range v.Page().Items {
		if task.Priority != model.PriorityMedium {
			t.Errorf("unexpected %s task", task.Priority)
		}
	}

	v, cmd = update(v, keyMsg("f"))
	v = settle(t, v, cmd)
	if v.Query().Filter != model.FilterHigh {
		t.Errorf("filter after cycle = %v", v.Query().Filter)
	}
	if !strings.Contains(v.View(), "No tasks match") {
		t.Error("filtered empty placeholder not shown")
	}

	filters := v.RenderFilters()
	for _, f := range model.Filters {
		if !strings.Contains(filters, f.String()) {
			t.Errorf("filter bar missing %s", f)
		}
	}
}

func TestRenderPagination(t *testing.T) {
	v, _ := newTestList(testutil.NewFakeAPI())

	single := model.Pagination{CurrentPage: 1, TotalPages: 1}
	if c := Controls(single); c.Visible {
		t.Error("single page should hide the pager")
	}
	if out := v.RenderPagination(single); out != "" {
		t.Errorf("single page rendered %q", out)
	}
	if out := v.RenderPagination(model.Pagination{}); out != "" {
		t.Errorf("empty result rendered %q", out)
	}

	p := model.Pagination{CurrentPage: 1, TotalPages: 3, HasPrev: false, HasNext: true}
	c := Controls(p)
	want := PaginationControls{Visible: true, Current: 1, Total: 3, PrevEnabled: false, NextEnabled: true}
	if c != want {
		t.Errorf("Controls() = %+v, want %+v", c, want)
	}
	if out := v.RenderPagination(p); !strings.Contains(out, "Page 1 of 3") {
		t.Errorf("pager = %q", out)
	}
}

func TestRenderTasksEscapesMarkup(t *testing.T) {
	v, _ := newTestList(testutil.NewFakeAPI())

	items := []model.Task{
		{ID: 1, Title: "<script>alert(1)</script>", Priority: model.PriorityHigh},
		{ID: 2, Title: "\x1b[2J\x1b]8;;http://evil.example\x07click me\x1b]8;;\x07\r\n", Priority: model.PriorityLow},
	}
	out := v.RenderTasks(items)

	if !strings.Contains(out, "<script>alert(1)</script>") {
		t.Error("markup title not shown literally")
	}
	for _, seq := range []string{"\x1b[2J", "\x1b]8", "\x07", "\r"} {
		if strings.Contains(out, seq) {
			t.Errorf("control sequence %q leaked into output", seq)
		}
	}
	if !strings.Contains(out, "click me") {
		t.Error("visible text of the link lost")
	}
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"\x1b[31mred\x1b[0m", "red"},
		{"tab\there", "tabhere"},
		{"<b>bold</b>", "<b>bold</b>"},
		{"naïve café", "naïve café"},
	}
	for _, tt := range tests {
		if got := SanitizeTitle(tt.in); got != tt.want {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderTasksEmptyAndDates(t *testing.T) {
	v, _ := newTestList(testutil.NewFakeAPI())

	if out := v.RenderTasks(nil); !strings.Contains(out, "No tasks yet") {
		t.Errorf("empty placeholder = %q", out)
	}

	created := time.Date(2024, 3, 5, 14, 7, 0, 0, time.Local)
	out := v.RenderTasks([]model.Task{{ID: 1, Title: "Dated", Priority: model.PriorityMedium, CreatedAt: model.NewTimestamp(created)}})
	if !strings.Contains(out, "05/03/2024 14:07") {
		t.Errorf("date not rendered as dd/mm/yyyy hh:mm: %q", out)
	}
	if !strings.Contains(out, model.PriorityMedium.Marker()) {
		t.Error("priority marker missing")
	}
}

func TestCopyTitle(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Add("Copy me", model.PriorityLow)
	v, n := started(t, fake)

	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	defer func() { copyToClipboard = orig }()

	update(v, keyMsg("y"))
	if copied != "Copy me" {
		t.Errorf("copied %q", copied)
	}
	if len(n.successes) != 1 || n.successes[0] != MsgCopied {
		t.Errorf("successes = %v", n.successes)
	}
}

func TestEscClearsSearch(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.Add("Alpha", model.PriorityLow)
	fake.Add("Beta", model.PriorityLow)
	v, _ := started(t, fake)

	v, cmd := v.SetSearch("alp")
	v = settle(t, v, cmd)
	if len(v.Page().Items) != 1 {
		t.Fatalf("search not applied: %v", titles(v.Page().Items))
	}

	v, cmd = update(v, keyMsg("esc"))
	v = settle(t, v, cmd)
	if v.Query().SearchText != "" || len(v.Page().Items) != 2 {
		t.Errorf("search not cleared: %+v %v", v.Query(), titles(v.Page().Items))
	}
}
