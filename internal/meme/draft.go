package meme

// Draft is an item being assembled by the upload dialog.
type Draft struct {
	MediaRef string
	Kind     Kind
	Duration int
	Title    string
	Tags     []string
	// Public stays nil until the visibility step.
	Public *bool
}

// Empty reports whether no field of the draft has been set.
func (d Draft) Empty() bool {
	return d.MediaRef == "" && d.Kind == "" && d.Duration == 0 &&
		d.Title == "" && d.Tags == nil && d.Public == nil
}

// Reset clears every field.
func (d *Draft) Reset() {
	*d = Draft{}
}

// ToNewItem converts a finished draft into a create request for owner.
func (d Draft) ToNewItem(owner int64) NewItem {
	tags := make([]string, len(d.Tags))
	copy(tags, d.Tags)
	public := false
	if d.Public != nil {
		public = *d.Public
	}
	return NewItem{
		OwnerID:  owner,
		MediaRef: d.MediaRef,
		Kind:     d.Kind,
		Duration: d.Duration,
		Title:    d.Title,
		Tags:     tags,
		Public:   public,
	}
}
