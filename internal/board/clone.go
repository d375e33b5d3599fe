package board

// Clone returns a deep copy of the board graph.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	out := *b
	out.Columns = make([]*Column, len(b.Columns))
	for i, c := range b.Columns {
		out.Columns[i] = c.Clone()
	}
	return &out
}

// Clone returns a deep copy of the column and its tasks.
func (c *Column) Clone() *Column {
	if c == nil {
		return nil
	}
	out := *c
	out.Tasks = make([]*Task, len(c.Tasks))
	for i, t := range c.Tasks {
		out.Tasks[i] = t.Clone()
	}
	return &out
}

// Clone returns a deep copy of the task and its children.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	out := *t
	out.Labels = append([]Label{}, t.Labels...)
	if t.DueDate != nil {
		d := *t.DueDate
		out.DueDate = &d
	}
	out.Subtasks = make([]*Subtask, len(t.Subtasks))
	for i, s := range t.Subtasks {
		cp := *s
		out.Subtasks[i] = &cp
	}
	out.Attachments = make([]*Attachment, len(t.Attachments))
	for i, a := range t.Attachments {
		cp := *a
		out.Attachments[i] = &cp
	}
	out.Comments = make([]*Comment, len(t.Comments))
	for i, c := range t.Comments {
		cp := *c
		out.Comments[i] = &cp
	}
	return &out
}
