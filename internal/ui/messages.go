package ui

import "time"

// ToastDuration is how long a toast stays on screen
const ToastDuration = 3 * time.Second

// maxToasts caps the stack; older toasts are dropped first
const maxToasts = 3

// ToastKind selects the toast style
type ToastKind int

const (
	ToastSuccess ToastKind = iota
	ToastError
)

func (k ToastKind) String() string {
	if k == ToastError {
		return "error"
	}
	return "success"
}

// ToastMsg asks the root model to show a transient message
type ToastMsg struct {
	Kind ToastKind
	Text string
}

// toastExpiredMsg removes the toast with the given id
type toastExpiredMsg struct {
	id int
}

// ThemeChangedMsg reports that the theme was switched
type ThemeChangedMsg struct {
	ThemeName string
}
