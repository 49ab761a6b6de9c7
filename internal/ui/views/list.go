package views

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dori/taskdeck/internal/api"
	"github.com/dori/taskdeck/internal/model"
	"github.com/dori/taskdeck/internal/ui/debounce"
	"github.com/dori/taskdeck/internal/ui/dialog"
)

// Toast texts. The failure texts are fallbacks used when the server
// sends no message of its own.
const (
	MsgLoadFailed   = "Could not load tasks"
	MsgCreateFailed = "Could not add task"
	MsgUpdateFailed = "Could not update task"
	MsgDeleteFailed = "Could not delete task"

	MsgCreated = "Task added"
	MsgUpdated = "Task updated"
	MsgDeleted = "Task deleted"
	MsgCopied  = "Title copied"
)

var copyToClipboard = clipboard.WriteAll

// Phase is where the list is in its load cycle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseRendered
	PhaseErrorShown
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "Loading"
	case PhaseRendered:
		return "Rendered"
	case PhaseErrorShown:
		return "ErrorShown"
	default:
		return "Idle"
	}
}

// ListMode represents the current input mode of the list view
type ListMode int

const (
	ListModeNormal ListMode = iota
	ListModeSearch
	ListModeAdd
	ListModeEdit
	ListModeConfirmDelete
)

// RefreshMsg asks the list to reload. Initial also fetches stats right away.
type RefreshMsg struct {
	Initial bool
}

type tasksLoadedMsg struct {
	seq   int
	query model.QueryState
	page  model.Page
	err   error
}

type statsLoadedMsg struct {
	seq   int
	stats model.Stats
	err   error
}

type taskCreatedMsg struct {
	task model.Task
	err  error
}

type taskUpdatedMsg struct {
	task model.Task
	err  error
}

type taskDeletedMsg struct {
	id  int64
	err error
}

// ListOptions configures a ListView
type ListOptions struct {
	PageSize       int
	SearchDebounce time.Duration
}

type createForm struct {
	input      textinput.Model
	priority   model.Priority
	err        string
	submitting bool
}

func newCreateForm() createForm {
	ti := textinput.New()
	ti.Placeholder = "New task..."
	ti.CharLimit = model.MaxTitleLength
	return createForm{input: ti, priority: model.PriorityLow}
}

func (f createForm) reset() createForm {
	f.input.Reset()
	f.input.Blur()
	f.priority = model.PriorityLow
	f.err = ""
	f.submitting = false
	return f
}

// ListView is the task list controller. It owns the query, the last
// accepted page and the request generations used to drop stale responses.
type ListView struct {
	api      api.Service
	notifier Notifier
	width    int
	height   int

	query    model.QueryState
	page     model.Page
	stats    model.Stats
	hasStats bool
	phase    Phase
	cursor   int

	// Latest issued generation per request kind; older responses are stale.
	listSeq  int
	statsSeq int
	inflight int

	mode     ListMode
	search   textinput.Model
	debounce debounce.Model
	form     createForm
	confirm  dialog.Confirm
	edit     dialog.Edit
}

// NewListView creates a list view backed by svc
func NewListView(svc api.Service, notifier Notifier, opts ListOptions) ListView {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = debounce.DefaultDelay
	}

	si := textinput.New()
	si.Placeholder = "Search tasks..."
	si.CharLimit = model.MaxTitleLength
	si.Prompt = "/"

	return ListView{
		api:      svc,
		notifier: notifier,
		query:    model.NewQueryState(opts.PageSize),
		page:     model.Page{Items: []model.Task{}},
		search:   si,
		debounce: debounce.New(opts.SearchDebounce),
		form:     newCreateForm(),
	}
}

// Init loads the first page and the stats
func (v ListView) Init() tea.Cmd {
	return func() tea.Msg {
		return RefreshMsg{Initial: true}
	}
}

// IsInputMode returns true when the view is capturing keys for an input
// or dialog
func (v ListView) IsInputMode() bool {
	return v.mode != ListModeNormal
}

// SetSize updates the view dimensions
func (v ListView) SetSize(width, height int) ListView {
	v.width = width
	v.height = height
	v.search.Width = width - 6
	v.form.input.Width = width - 8
	v.confirm.Width = width
	v.edit.Width = width
	return v
}

func (v ListView) Phase() Phase            { return v.phase }
func (v ListView) Loading() bool           { return v.inflight > 0 }
func (v ListView) Page() model.Page        { return v.page }
func (v ListView) Query() model.QueryState { return v.query }
func (v ListView) Mode() ListMode          { return v.mode }
func (v ListView) FormError() string       { return v.form.err }
func (v ListView) FormTitle() string       { return v.form.input.Value() }
func (v ListView) FormPriority() model.Priority {
	return v.form.priority
}

// Stats returns the last accepted stats; ok is false until one arrives
func (v ListView) Stats() (model.Stats, bool) {
	return v.stats, v.hasStats
}

// Selected returns the task under the cursor
func (v ListView) Selected() (model.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.page.Items) {
		return model.Task{}, false
	}
	return v.page.Items[v.cursor], true
}

// SetFilter switches the priority filter and reloads from page 1
func (v ListView) SetFilter(f model.PriorityFilter) (ListView, tea.Cmd) {
	v.query = v.query.WithFilter(f)
	return v.RefreshList()
}

// SetSearch schedules a search for text once typing pauses. Each call
// replaces the pending one.
func (v ListView) SetSearch(text string) (ListView, tea.Cmd) {
	var cmd tea.Cmd
	v.debounce, cmd = v.debounce.Trigger(text)
	return v, cmd
}

// GoToPrevPage is a no-op on the first page
func (v ListView) GoToPrevPage() (ListView, tea.Cmd) {
	q, ok := v.query.PrevPage()
	if !ok {
		return v, nil
	}
	v.query = q
	return v.RefreshList()
}

// GoToNextPage moves forward; the server decides whether the page exists
func (v ListView) GoToNextPage() (ListView, tea.Cmd) {
	v.query = v.query.NextPage()
	return v.RefreshList()
}

// RefreshList requests the page for the current query. The response is
// only applied if no newer request was issued in the meantime.
func (v ListView) RefreshList() (ListView, tea.Cmd) {
	v.listSeq++
	v.inflight++
	v.phase = PhaseLoading
	return v, v.fetchTasks(v.listSeq, v.query)
}

func (v ListView) refreshStats() (ListView, tea.Cmd) {
	v.statsSeq++
	return v, v.fetchStats(v.statsSeq)
}

// CreateTask validates locally, then posts the task. Invalid input never
// reaches the network and leaves the form as typed.
func (v ListView) CreateTask(title string, priority model.Priority) (ListView, tea.Cmd) {
	if v.form.submitting {
		return v, nil
	}

	title = model.NormalizeTitle(title)
	if err := model.ValidateTitle(title); err != nil {
		v.form.err = errorText(err)
		return v, v.notifier.NotifyError(v.form.err)
	}
	if !priority.Valid() {
		priority = model.PriorityLow
	}

	v.form.err = ""
	v.form.submitting = true
	return v, v.createTask(api.TaskInput{Title: title, Priority: priority})
}

// DeleteTask asks for confirmation before deleting id
func (v ListView) DeleteTask(id int64) (ListView, tea.Cmd) {
	name := "this task"
	for _, t := range v.page.Items {
		if t.ID == id {
			name = "\"" + SanitizeTitle(t.Title) + "\""
			break
		}
	}
	v.confirm = dialog.NewConfirm(id, "Delete task", "Delete "+name+"? This cannot be undone.")
	v.confirm.Width = v.width
	v.mode = ListModeConfirmDelete
	return v, nil
}

// EditTask opens the edit dialog pre-filled with the task's values
func (v ListView) EditTask(id int64, title string, priority model.Priority) (ListView, tea.Cmd) {
	v.edit = dialog.NewEdit(id, title, priority)
	v.edit.Width = v.width
	v.mode = ListModeEdit
	return v, v.edit.Init()
}

// Update handles messages for the list view
func (v ListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshMsg:
		var listCmd, statsCmd tea.Cmd
		v, listCmd = v.RefreshList()
		if msg.Initial {
			v, statsCmd = v.refreshStats()
		}
		return v, tea.Batch(listCmd, statsCmd)

	case tasksLoadedMsg:
		return v.handleTasksLoaded(msg)

	case statsLoadedMsg:
		return v.handleStatsLoaded(msg), nil

	case taskCreatedMsg:
		return v.handleTaskCreated(msg)

	case taskUpdatedMsg:
		if msg.err != nil {
			return v, v.notifier.NotifyError(api.UserMessage(msg.err, MsgUpdateFailed))
		}
		var cmd tea.Cmd
		v, cmd = v.RefreshList()
		return v, tea.Batch(cmd, v.notifier.NotifySuccess(MsgUpdated))

	case taskDeletedMsg:
		if msg.err != nil {
			return v, v.notifier.NotifyError(api.UserMessage(msg.err, MsgDeleteFailed))
		}
		var cmd tea.Cmd
		v, cmd = v.RefreshList()
		return v, tea.Batch(cmd, v.notifier.NotifySuccess(MsgDeleted))

	case debounce.Msg:
		var ok bool
		v.debounce, ok = v.debounce.Accept(msg)
		if !ok {
			return v, nil
		}
		v.query = v.query.WithSearch(strings.TrimSpace(msg.Value))
		return v.RefreshList()

	case dialog.ConfirmResultMsg:
		if v.mode == ListModeConfirmDelete {
			v.mode = ListModeNormal
		}
		if !msg.Accepted {
			return v, nil
		}
		return v, v.deleteTask(msg.ID)

	case dialog.EditResultMsg:
		if v.mode == ListModeEdit {
			v.mode = ListModeNormal
		}
		if msg.Canceled {
			return v, nil
		}
		return v, v.updateTask(msg.ID, api.TaskInput{Title: msg.Title, Priority: msg.Priority})

	case tea.KeyMsg:
		switch v.mode {
		case ListModeSearch:
			return v.handleSearchMode(msg)
		case ListModeAdd:
			return v.handleAddMode(msg)
		case ListModeEdit:
			var cmd tea.Cmd
			v.edit, cmd = v.edit.Update(msg)
			return v, cmd
		case ListModeConfirmDelete:
			var cmd tea.Cmd
			v.confirm, cmd = v.confirm.Update(msg)
			return v, cmd
		default:
			return v.handleNormalMode(msg)
		}
	}

	// Cursor blink and similar go to whichever input has focus
	var cmd tea.Cmd
	switch v.mode {
	case ListModeSearch:
		v.search, cmd = v.search.Update(msg)
	case ListModeAdd:
		v.form.input, cmd = v.form.input.Update(msg)
	case ListModeEdit:
		v.edit, cmd = v.edit.Update(msg)
	}
	return v, cmd
}

func (v ListView) handleTasksLoaded(msg tasksLoadedMsg) (ListView, tea.Cmd) {
	if v.inflight > 0 {
		v.inflight--
	}

	if msg.seq != v.listSeq {
		log.Printf("list: dropping stale response %d (latest %d, page %d)", msg.seq, v.listSeq, msg.query.Page)
		return v, nil
	}

	if msg.err != nil {
		log.Printf("list: load failed: %v", msg.err)
		v.phase = PhaseErrorShown
		return v, v.notifier.NotifyError(api.UserMessage(msg.err, MsgLoadFailed))
	}

	v.page = msg.page
	if v.page.Items == nil {
		v.page.Items = []model.Task{}
	}
	v.phase = PhaseRendered
	if v.cursor >= len(v.page.Items) {
		v.cursor = max(0, len(v.page.Items)-1)
	}

	return v.refreshStats()
}

func (v ListView) handleStatsLoaded(msg statsLoadedMsg) ListView {
	if msg.seq != v.statsSeq {
		return v
	}
	if msg.err != nil {
		log.Printf("stats: %v", msg.err)
		return v
	}
	v.stats = msg.stats
	v.hasStats = true
	return v
}

func (v ListView) handleTaskCreated(msg taskCreatedMsg) (ListView, tea.Cmd) {
	v.form.submitting = false
	if msg.err != nil {
		v.form.err = api.UserMessage(msg.err, MsgCreateFailed)
		return v, v.notifier.NotifyError(v.form.err)
	}

	v.form = v.form.reset()
	if v.mode == ListModeAdd {
		v.mode = ListModeNormal
	}
	v.query.Page = 1
	v.cursor = 0

	var cmd tea.Cmd
	v, cmd = v.RefreshList()
	return v, tea.Batch(cmd, v.notifier.NotifySuccess(MsgCreated))
}

// handleNormalMode handles keypresses in normal mode
func (v ListView) handleNormalMode(msg tea.KeyMsg) (ListView, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if v.cursor < len(v.page.Items)-1 {
			v.cursor++
		}
	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
		}
	case "g", "home":
		v.cursor = 0
	case "G", "end":
		v.cursor = max(0, len(v.page.Items)-1)

	case "h", "left", "pgup":
		if v.page.Pagination.HasPrev {
			return v.GoToPrevPage()
		}
	case "l", "right", "pgdown":
		if v.page.Pagination.HasNext {
			return v.GoToNextPage()
		}

	case "f":
		return v.SetFilter(v.query.Filter.Next())
	case "0", "1", "2", "3":
		return v.SetFilter(model.Filters[int(msg.String()[0]-'0')])

	case "/":
		v.mode = ListModeSearch
		return v, v.search.Focus()
	case "esc":
		if v.query.SearchText != "" || v.debounce.Pending() || v.search.Value() != "" {
			v.search.SetValue("")
			v.debounce = v.debounce.Cancel()
			v.query = v.query.WithSearch("")
			return v.RefreshList()
		}

	case "a", "n":
		v.mode = ListModeAdd
		return v, v.form.input.Focus()
	case "e", "enter":
		if t, ok := v.Selected(); ok {
			return v.EditTask(t.ID, t.Title, t.Priority)
		}
	case "d", "x", "delete":
		if t, ok := v.Selected(); ok {
			return v.DeleteTask(t.ID)
		}
	case "r":
		return v.RefreshList()
	case "y":
		if t, ok := v.Selected(); ok {
			if err := copyToClipboard(t.Title); err != nil {
				log.Printf("clipboard: %v", err)
				return v, v.notifier.NotifyError("Could not copy title")
			}
			return v, v.notifier.NotifySuccess(MsgCopied)
		}
	}
	return v, nil
}

func (v ListView) handleSearchMode(msg tea.KeyMsg) (ListView, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		v.search.Blur()
		v.mode = ListModeNormal
		return v, nil
	}

	before := v.search.Value()
	var inputCmd, searchCmd tea.Cmd
	v.search, inputCmd = v.search.Update(msg)
	if v.search.Value() != before {
		v, searchCmd = v.SetSearch(v.search.Value())
	}
	return v, tea.Batch(inputCmd, searchCmd)
}

func (v ListView) handleAddMode(msg tea.KeyMsg) (ListView, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.form.input.Blur()
		v.form.err = ""
		v.mode = ListModeNormal
		return v, nil
	case "tab":
		v.form.priority = v.form.priority.Next()
		return v, nil
	case "shift+tab":
		v.form.priority = v.form.priority.Next().Next()
		return v, nil
	case "enter":
		return v.CreateTask(v.form.input.Value(), v.form.priority)
	}

	var cmd tea.Cmd
	v.form.input, cmd = v.form.input.Update(msg)
	return v, cmd
}

// Commands

func (v ListView) fetchTasks(seq int, q model.QueryState) tea.Cmd {
	svc := v.api
	return func() tea.Msg {
		page, err := svc.ListTasks(context.Background(), q)
		return tasksLoadedMsg{seq: seq, query: q, page: page, err: err}
	}
}

func (v ListView) fetchStats(seq int) tea.Cmd {
	svc := v.api
	return func() tea.Msg {
		stats, err := svc.Stats(context.Background())
		return statsLoadedMsg{seq: seq, stats: stats, err: err}
	}
}

func (v ListView) createTask(in api.TaskInput) tea.Cmd {
	svc := v.api
	return func() tea.Msg {
		task, err := svc.CreateTask(context.Background(), in)
		return taskCreatedMsg{task: task, err: err}
	}
}

func (v ListView) updateTask(id int64, in api.TaskInput) tea.Cmd {
	svc := v.api
	return func() tea.Msg {
		task, err := svc.UpdateTask(context.Background(), id, in)
		return taskUpdatedMsg{task: task, err: err}
	}
}

func (v ListView) deleteTask(id int64) tea.Cmd {
	svc := v.api
	return func() tea.Msg {
		return taskDeletedMsg{id: id, err: svc.DeleteTask(context.Background(), id)}
	}
}

// errorText turns a validation error into a sentence for the UI
func errorText(err error) string {
	s := err.Error()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
