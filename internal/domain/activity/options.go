package activity

// ListOptions provides filtering options for listing journal entries.
type ListOptions struct {
	RunID  string
	Site   string
	Type   *EntryType
	Limit  int
	Offset int
}
