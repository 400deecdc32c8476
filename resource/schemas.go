package resource

// Built-in content types of the portfolio site.
var (
	Biography = Schema{
		Name:   "biography",
		Label:  "Biography",
		Plural: "Biography",
		Table:  "biography",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Searchable: true},
			{Name: "content", Label: "Content", Kind: KindLongText, Required: true, Searchable: true},
		},
		Order:     Order{Field: FieldCreatedAt, Desc: true},
		Singleton: true,
	}

	Milestones = Schema{
		Name:   "milestones",
		Label:  "Milestone",
		Plural: "Milestones",
		Table:  "milestones",
		Fields: []Field{
			{Name: "year", Label: "Year", Kind: KindInt, Required: true, Searchable: true},
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Searchable: true},
			{Name: "description", Label: "Description", Kind: KindLongText, Searchable: true},
			{Name: "image_url", Label: "Image", Kind: KindURL},
		},
		Media: &MediaSpec{Field: "image_url", Bucket: "milestones", Kinds: []MediaKind{MediaImage}},
		Order: Order{Field: "year", Desc: true},
	}

	Portfolio = Schema{
		Name:   "portfolio",
		Label:  "Portfolio item",
		Plural: "Portfolio",
		Table:  "portfolio",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Searchable: true},
			{Name: "category", Label: "Category", Kind: KindText, Required: true, Searchable: true},
			{Name: "description", Label: "Description", Kind: KindLongText, Searchable: true},
			{Name: "image_url", Label: "Image", Kind: KindURL},
		},
		Media:         &MediaSpec{Field: "image_url", Bucket: "portfolio", Kinds: []MediaKind{MediaImage}, Required: true},
		Order:         Order{Field: FieldCreatedAt, Desc: true},
		CategoryField: "category",
	}

	Blog = Schema{
		Name:   "blog",
		Label:  "Blog post",
		Plural: "Blog posts",
		Table:  "blog_posts",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Searchable: true},
			{Name: "excerpt", Label: "Excerpt", Kind: KindText, Searchable: true},
			{Name: "content", Label: "Content", Kind: KindLongText, Required: true, Searchable: true},
			{Name: "image_url", Label: "Cover image", Kind: KindURL},
			{Name: "tags", Label: "Tags", Kind: KindSet, Searchable: true},
			{Name: "status", Label: "Status", Kind: KindEnum},
		},
		Media:         &MediaSpec{Field: "image_url", Bucket: "blog", Kinds: []MediaKind{MediaImage}},
		Order:         Order{Field: FieldCreatedAt, Desc: true},
		StatusField:   "status",
		Statuses:      []string{"draft", "published"},
		DefaultStatus: "draft",
	}

	Projects = Schema{
		Name:   "projects",
		Label:  "Project",
		Plural: "Projects",
		Table:  "projects",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Searchable: true},
			{Name: "description", Label: "Description", Kind: KindLongText, Required: true, Searchable: true},
			{Name: "duration", Label: "Duration", Kind: KindText},
			{Name: "location", Label: "Location", Kind: KindText, Searchable: true},
			{Name: "status", Label: "Status", Kind: KindEnum},
			{Name: "volunteer_count", Label: "Volunteers", Kind: KindInt},
			{Name: "media_url", Label: "Media", Kind: KindURL},
			{Name: "media_type", Label: "Media type", Kind: KindText},
			{Name: "accepts_volunteers", Label: "Accepts volunteers", Kind: KindBool},
		},
		Media: &MediaSpec{
			Field:     "media_url",
			Bucket:    "projects",
			Kinds:     []MediaKind{MediaImage, MediaVideo},
			KindField: "media_type",
		},
		Order:         Order{Field: FieldCreatedAt, Desc: true},
		StatusField:   "status",
		Statuses:      []string{"planning", "upcoming", "ongoing", "completed"},
		DefaultStatus: "planning",
	}

	Events = Schema{
		Name:   "events",
		Label:  "Event",
		Plural: "Events",
		Table:  "events",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Searchable: true},
			{Name: "description", Label: "Description", Kind: KindLongText, Searchable: true},
			{Name: "date", Label: "Date", Kind: KindDate, Required: true},
			{Name: "time", Label: "Time", Kind: KindTime},
			{Name: "location", Label: "Location", Kind: KindText, Required: true, Searchable: true},
			{Name: "status", Label: "Status", Kind: KindEnum},
			{Name: "capacity", Label: "Capacity", Kind: KindInt},
		},
		Order:         Order{Field: "date"},
		StatusField:   "status",
		Statuses:      []string{"upcoming", "ongoing", "completed"},
		DefaultStatus: "upcoming",
	}

	Volunteers = Schema{
		Name:   "volunteers",
		Label:  "Volunteer application",
		Plural: "Volunteers",
		Table:  "volunteers",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Required: true, Searchable: true},
			{Name: "email", Label: "Email", Kind: KindEmail, Required: true, Searchable: true},
			{Name: "phone", Label: "Phone", Kind: KindText},
			{Name: "availability", Label: "Availability", Kind: KindSet},
			{Name: "skills", Label: "Skills", Kind: KindSet, Searchable: true},
			{Name: "interests", Label: "Interests", Kind: KindSet, Searchable: true},
			{Name: "message", Label: "Message", Kind: KindLongText},
			{Name: "status", Label: "Status", Kind: KindEnum},
			{Name: "project_id", Label: "Project", Kind: KindRef, RefTable: "projects"},
		},
		Order:         Order{Field: FieldCreatedAt, Desc: true},
		StatusField:   "status",
		Statuses:      []string{"pending", "approved", "rejected"},
		DefaultStatus: "pending",
	}

	Messages = Schema{
		Name:   "messages",
		Label:  "Message",
		Plural: "Messages",
		Table:  "messages",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Required: true, Searchable: true},
			{Name: "email", Label: "Email", Kind: KindEmail, Required: true, Searchable: true},
			{Name: "subject", Label: "Subject", Kind: KindText, Searchable: true},
			{Name: "message", Label: "Message", Kind: KindLongText, Required: true, Searchable: true},
			{Name: "read", Label: "Read", Kind: KindBool},
		},
		Order: Order{Field: FieldCreatedAt, Desc: true},
	}
)

// All returns the built-in schemas in navigation order.
func All() []Schema {
	return []Schema{Biography, Milestones, Portfolio, Blog, Projects, Events, Volunteers, Messages}
}

// Lookup returns the built-in schema with the given name.
func Lookup(name string) (Schema, bool) {
	for _, s := range All() {
		if s.Name == name {
			return s, true
		}
	}
	return Schema{}, false
}
