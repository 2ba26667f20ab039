package editor

import "log/slog"

// SetDirty marks the row as diverged from the server (or not) and shows
// or hides its Save/Revert controls to match.
func (r *Row) SetDirty(dirty bool) {
	r.dirty = dirty
	r.view.SetModified(dirty)

	if dirty && !r.buttonsShown {
		r.buttonsShown = true
		r.view.ShowButtons()
	}
	if !dirty && r.buttonsShown {
		r.buttonsShown = false
		r.view.HideButtons()
	}
}

// SetWarning shows msg under the row, or hides the warning when msg is
// empty. The old text is cleared only after the region is hidden.
func (r *Row) SetWarning(msg string) {
	r.warning = msg

	if msg != "" {
		r.view.SetWarningText(msg)
		if !r.warningShown {
			r.warningShown = true
			r.view.ShowWarning()
		}
		return
	}

	if !r.warningShown {
		return
	}
	r.warningShown = false
	r.view.HideWarning(func() {
		// A new warning may have arrived while hiding.
		if r.warning == "" {
			r.view.SetWarningText("")
		}
	})
}

// Edit records new content typed into a sub-field. The first edit of a
// clean row marks it dirty.
func (e *Editor) Edit(ref FieldRef, text string) error {
	r, err := e.row(ref.Table, ref.PropID)
	if err != nil {
		return err
	}

	if _, ok := r.fields[ref.Field]; !ok {
		slog.Warn("edit for stale sub-field", "table", ref.Table.String(), "id", ref.PropID, "field", ref.Field)
		return ErrFieldNotFound
	}

	r.fields[ref.Field] = text
	if !r.dirty {
		r.SetDirty(true)
	}
	return nil
}
