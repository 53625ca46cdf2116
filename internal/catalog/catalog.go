// Package catalog declares the site's content resources.
package catalog

import (
	"site-content-api/internal/model"
	"site-content-api/internal/resource"
	"site-content-api/internal/store"
	v "site-content-api/internal/validate"
)

var (
	staff = []string{model.RoleAdmin, model.RoleManager}
	admin = []string{model.RoleAdmin}

	// catalogue content: public reads, staff writes
	published = resource.Access{Create: staff, Update: staff, Delete: admin}
	// visitor submissions: public rate-limited create, staff everything else
	submitted = resource.Access{List: staff, Get: staff, Update: staff, Delete: admin, LimitCreate: true}
)

var byOrder = []store.SortKey{{Field: "order"}, {Field: model.KeyCreatedAt, Desc: true}}
var newestFirst = []store.SortKey{{Field: model.KeyCreatedAt, Desc: true}}

// Definitions returns every resource in route order. clock stamps derived
// timestamps such as a blog post's publishedAt.
func Definitions(clock store.Clock) []resource.Definition {
	return []resource.Definition{
		Services(),
		Products(),
		Appointments(),
		Inquiries(),
		Testimonials(),
		Team(),
		Blog(clock),
		Contact(),
	}
}

func Services() resource.Definition {
	return resource.Definition{
		Name:     "services",
		Singular: "Service",
		Fields: []string{"title", "description", "shortDescription", "icon", "features",
			"price", "category", "isActive", "order"},
		Create: v.RuleSet{
			{Field: "title", Kind: v.String, Tag: "min=2", Message: "Title must be at least 2 characters"},
			{Field: "description", Kind: v.String, Tag: "min=10", Message: "Description must be at least 10 characters"},
			{Field: "shortDescription", Kind: v.String, Tag: "min=5,max=200", Message: "Short description must be 5-200 characters"},
			{Field: "icon", Kind: v.String, Tag: "required", Message: "Icon is required"},
			{Field: "features", Kind: v.List, Tag: "min=1,dive,required", Message: "At least one feature is required"},
			{Field: "category", Kind: v.String, Tag: "oneof=software-development web-development digital-marketing ready-made-systems", Message: "Invalid category"},
			{Field: "price", Kind: v.Object, Optional: true},
			{Field: "price.type", Kind: v.String, Tag: "oneof=fixed starting custom", Optional: true},
			{Field: "price.amount", Kind: v.Number, Tag: "min=0", Optional: true, Message: "Price amount must be a positive number"},
			{Field: "price.currency", Kind: v.String, Tag: "len=3", Optional: true},
			{Field: "isActive", Kind: v.Bool, Optional: true},
			{Field: "order", Kind: v.Number, Optional: true, Message: "Order must be numeric"},
		},
		Filters: []resource.Filter{
			{Param: "category", Field: "category"},
			{Param: "active", Field: "isActive", Kind: resource.Flag},
		},
		Sort: byOrder,
		Defaults: map[string]any{
			"isActive": true,
			"order":    0.0,
			"price":    map[string]any{"type": "custom", "currency": "USD"},
		},
		Normalize: roundMoney("price.amount"),
		Access:    published,
	}
}

func Products() resource.Definition {
	return resource.Definition{
		Name:     "products",
		Singular: "Product",
		Fields: []string{"name", "description", "shortDescription", "category", "features",
			"technologies", "images", "demoUrl", "price", "isActive", "isFeatured", "order"},
		Create: v.RuleSet{
			{Field: "name", Kind: v.String, Tag: "min=2", Message: "Name must be at least 2 characters"},
			{Field: "description", Kind: v.String, Tag: "min=10", Message: "Description must be at least 10 characters"},
			{Field: "shortDescription", Kind: v.String, Tag: "min=5,max=200", Message: "Short description must be 5-200 characters"},
			{Field: "category", Kind: v.String, Tag: "oneof=POS HMS SMS 'School Management' Other", Message: "Invalid category"},
			{Field: "features", Kind: v.List, Tag: "min=1,dive,required", Message: "At least one feature is required"},
			{Field: "technologies", Kind: v.List, Tag: "min=1,dive,required", Message: "At least one technology is required"},
			{Field: "images", Kind: v.List, Optional: true},
			{Field: "demoUrl", Kind: v.String, Tag: "url", Optional: true},
			{Field: "price", Kind: v.Object, Optional: true},
			{Field: "price.type", Kind: v.String, Tag: "oneof=fixed subscription custom", Optional: true},
			{Field: "price.amount", Kind: v.Number, Tag: "min=0", Optional: true, Message: "Price amount must be a positive number"},
			{Field: "price.currency", Kind: v.String, Tag: "len=3", Optional: true},
			{Field: "price.period", Kind: v.String, Tag: "oneof=monthly yearly one-time", Optional: true},
			{Field: "isActive", Kind: v.Bool, Optional: true},
			{Field: "isFeatured", Kind: v.Bool, Optional: true},
			{Field: "order", Kind: v.Number, Optional: true, Message: "Order must be numeric"},
		},
		Filters: []resource.Filter{
			{Param: "category", Field: "category"},
			{Param: "featured", Field: "isFeatured", Kind: resource.Flag},
			{Param: "active", Field: "isActive", Kind: resource.Flag},
		},
		Sort: byOrder,
		Defaults: map[string]any{
			"isActive":   true,
			"isFeatured": false,
			"order":      0.0,
		},
		Normalize: roundMoney("price.amount"),
		Access:    published,
	}
}

// AppointmentStatuses is the appointment workflow enum.
var AppointmentStatuses = []string{"pending", "confirmed", "completed", "cancelled", "rescheduled"}

func Appointments() resource.Definition {
	return resource.Definition{
		Name:     "appointments",
		Singular: "Appointment",
		Fields: []string{"clientName", "clientEmail", "clientPhone", "company", "serviceType",
			"appointmentDate", "appointmentTime", "message", "status", "notes"},
		Lower: []string{"clientEmail"},
		Create: v.RuleSet{
			{Field: "clientName", Kind: v.String, Tag: "min=2", Message: "Client name must be at least 2 characters"},
			{Field: "clientEmail", Kind: v.String, Tag: "email", Message: "Valid email is required"},
			{Field: "clientPhone", Kind: v.String, Tag: "min=10", Message: "Valid phone number is required"},
			{Field: "company", Kind: v.String, Optional: true},
			{Field: "serviceType", Kind: v.String, Tag: "required", Message: "Service type is required"},
			{Field: "appointmentDate", Kind: v.String, Tag: "isodate", Message: "Valid date is required"},
			{Field: "appointmentTime", Kind: v.String, Tag: "clock", Message: "Appointment time is required"},
			{Field: "message", Kind: v.String, Tag: "max=1000", Optional: true},
			{Field: "status", Kind: v.String, Tag: "oneof=" + joinEnum(AppointmentStatuses), Optional: true, Message: "Invalid status"},
			{Field: "notes", Kind: v.String, Tag: "max=1000", Optional: true},
		},
		Filters: []resource.Filter{
			{Param: "status", Field: "status"},
			{Param: "date", Field: "appointmentDate", Kind: resource.Day},
		},
		Sort: []store.SortKey{{Field: "appointmentDate"}, {Field: "appointmentTime"}},
		Unique: &store.UniqueKey{
			Fields:   []string{"appointmentDate", "appointmentTime"},
			Unless:   "status",
			UnlessIn: []string{"cancelled"},
		},
		Defaults:  map[string]any{"status": "pending"},
		Normalize: dateOnly("appointmentDate"),
		Access:    submitted,
		Messages: resource.Messages{
			Created:  "Appointment booked successfully",
			Conflict: "This time slot is already booked",
		},
	}
}

var (
	InquiryStatuses = []string{"new", "in-progress", "quoted", "closed", "converted"}
	Priorities      = []string{"low", "medium", "high"}
)

func Inquiries() resource.Definition {
	return resource.Definition{
		Name:     "inquiries",
		Singular: "Inquiry",
		Fields: []string{"clientName", "clientEmail", "clientPhone", "company", "subject", "message",
			"serviceType", "budget", "timeline", "status", "priority", "assignedTo", "notes"},
		Lower: []string{"clientEmail"},
		Create: v.RuleSet{
			{Field: "clientName", Kind: v.String, Tag: "min=2", Message: "Client name must be at least 2 characters"},
			{Field: "clientEmail", Kind: v.String, Tag: "email", Message: "Valid email is required"},
			{Field: "subject", Kind: v.String, Tag: "min=5", Message: "Subject must be at least 5 characters"},
			{Field: "message", Kind: v.String, Tag: "min=10", Message: "Message must be at least 10 characters"},
			{Field: "clientPhone", Kind: v.String, Optional: true},
			{Field: "company", Kind: v.String, Optional: true},
			{Field: "serviceType", Kind: v.String, Optional: true},
			{Field: "timeline", Kind: v.String, Optional: true},
			{Field: "budget", Kind: v.Object, Optional: true},
			{Field: "budget.min", Kind: v.Number, Tag: "min=0", Optional: true},
			{Field: "budget.max", Kind: v.Number, Tag: "min=0", Optional: true},
			{Field: "budget.currency", Kind: v.String, Tag: "len=3", Optional: true},
			{Field: "status", Kind: v.String, Tag: "oneof=" + joinEnum(InquiryStatuses), Optional: true, Message: "Invalid status"},
			{Field: "priority", Kind: v.String, Tag: "oneof=" + joinEnum(Priorities), Optional: true, Message: "Invalid priority"},
			{Field: "assignedTo", Kind: v.String, Tag: "uuid4", Optional: true, Message: "Assignee must be a user id"},
			{Field: "notes", Kind: v.String, Optional: true},
		},
		Filters: []resource.Filter{
			{Param: "status", Field: "status"},
			{Param: "priority", Field: "priority"},
		},
		Sort: newestFirst,
		Defaults: map[string]any{
			"status":   "new",
			"priority": "medium",
		},
		Normalize: roundMoney("budget.min", "budget.max"),
		Access:    submitted,
		Messages:  resource.Messages{Created: "Inquiry submitted successfully"},
	}
}

var TestimonialStatuses = []string{"pending", "approved", "rejected"}

func Testimonials() resource.Definition {
	return resource.Definition{
		Name:     "testimonials",
		Singular: "Testimonial",
		Fields: []string{"clientName", "clientPosition", "clientCompany", "clientImage", "content",
			"rating", "projectType", "status", "isFeatured", "order"},
		Create: v.RuleSet{
			{Field: "clientName", Kind: v.String, Tag: "min=2", Message: "Client name must be at least 2 characters"},
			{Field: "content", Kind: v.String, Tag: "min=10,max=500", Message: "Content must be 10-500 characters"},
			{Field: "rating", Kind: v.Integer, Tag: "min=1,max=5", Message: "Rating must be between 1 and 5"},
			{Field: "clientPosition", Kind: v.String, Optional: true},
			{Field: "clientCompany", Kind: v.String, Optional: true},
			{Field: "clientImage", Kind: v.String, Optional: true},
			{Field: "projectType", Kind: v.String, Optional: true},
			{Field: "status", Kind: v.String, Tag: "oneof=" + joinEnum(TestimonialStatuses), Optional: true, Message: "Invalid status"},
			{Field: "isFeatured", Kind: v.Bool, Optional: true},
			{Field: "order", Kind: v.Number, Optional: true},
		},
		Filters: []resource.Filter{
			{Param: "status", Field: "status"},
			{Param: "featured", Field: "isFeatured", Kind: resource.Flag},
		},
		Sort: byOrder,
		Defaults: map[string]any{
			"status":     "pending",
			"isFeatured": false,
			"order":      0.0,
		},
		Access: published,
	}
}

func Team() resource.Definition {
	return resource.Definition{
		Name:     "team",
		Singular: "Team member",
		Fields: []string{"name", "position", "bio", "image", "email", "linkedin", "twitter",
			"skills", "isActive", "order"},
		Lower: []string{"email"},
		Create: v.RuleSet{
			{Field: "name", Kind: v.String, Tag: "min=2", Message: "Name must be at least 2 characters"},
			{Field: "position", Kind: v.String, Tag: "min=2", Message: "Position must be at least 2 characters"},
			{Field: "bio", Kind: v.String, Tag: "min=10,max=500", Message: "Bio must be 10-500 characters"},
			{Field: "email", Kind: v.String, Tag: "email", Optional: true},
			{Field: "image", Kind: v.String, Optional: true},
			{Field: "linkedin", Kind: v.String, Tag: "url", Optional: true},
			{Field: "twitter", Kind: v.String, Optional: true},
			{Field: "skills", Kind: v.List, Optional: true},
			{Field: "isActive", Kind: v.Bool, Optional: true},
			{Field: "order", Kind: v.Number, Optional: true},
		},
		Filters: []resource.Filter{
			{Param: "active", Field: "isActive", Kind: resource.Flag},
		},
		Sort: []store.SortKey{{Field: "order"}},
		Defaults: map[string]any{
			"isActive": true,
			"order":    0.0,
		},
		Access: published,
	}
}

var BlogStatuses = []string{"draft", "published", "archived"}

func Blog(clock store.Clock) resource.Definition {
	if clock == nil {
		clock = store.SystemClock
	}
	p := publisher{clock: clock}
	return resource.Definition{
		Name:     "blog",
		Singular: "Blog post",
		Fields: []string{"title", "content", "excerpt", "featuredImage", "author", "category",
			"tags", "status", "readTime"},
		Create: v.RuleSet{
			{Field: "title", Kind: v.String, Tag: "min=5", Message: "Title must be at least 5 characters"},
			{Field: "content", Kind: v.String, Tag: "min=50", Message: "Content must be at least 50 characters"},
			{Field: "excerpt", Kind: v.String, Tag: "min=10,max=300", Message: "Excerpt must be 10-300 characters"},
			{Field: "category", Kind: v.String, Tag: "required", Message: "Category is required"},
			{Field: "tags", Kind: v.List, Optional: true},
			{Field: "featuredImage", Kind: v.String, Optional: true},
			{Field: "author", Kind: v.String, Optional: true},
			{Field: "status", Kind: v.String, Tag: "oneof=" + joinEnum(BlogStatuses), Optional: true, Message: "Invalid status"},
			{Field: "readTime", Kind: v.Integer, Tag: "min=1", Optional: true},
		},
		Filters: []resource.Filter{
			{Param: "status", Field: "status"},
			{Param: "category", Field: "category"},
			{Param: "tag", Field: "tags", Kind: resource.Tag},
		},
		Sort:   newestFirst,
		Unique: &store.UniqueKey{Fields: []string{"slug"}},
		Defaults: map[string]any{
			"status": "draft",
			"views":  0.0,
		},
		BeforeCreate: p.beforeCreate,
		BeforeUpdate: p.beforeUpdate,
		Access:       published,
		Messages:     resource.Messages{Conflict: "A blog post with this title already exists"},
	}
}

var ContactStatuses = []string{"new", "read", "replied"}

func Contact() resource.Definition {
	return resource.Definition{
		Name:     "contact",
		Singular: "Contact message",
		Fields:   []string{"name", "email", "phone", "subject", "message", "status", "priority"},
		Lower:    []string{"email"},
		Create: v.RuleSet{
			{Field: "name", Kind: v.String, Tag: "min=2", Message: "Name must be at least 2 characters"},
			{Field: "email", Kind: v.String, Tag: "email", Message: "Valid email is required"},
			{Field: "subject", Kind: v.String, Tag: "min=5", Message: "Subject must be at least 5 characters"},
			{Field: "message", Kind: v.String, Tag: "min=10", Message: "Message must be at least 10 characters"},
			{Field: "phone", Kind: v.String, Optional: true},
			{Field: "status", Kind: v.String, Tag: "oneof=" + joinEnum(ContactStatuses), Optional: true, Message: "Invalid status"},
			{Field: "priority", Kind: v.String, Tag: "oneof=" + joinEnum(Priorities), Optional: true, Message: "Invalid priority"},
		},
		Filters: []resource.Filter{
			{Param: "status", Field: "status"},
		},
		Sort: newestFirst,
		Defaults: map[string]any{
			"status":   "new",
			"priority": "medium",
		},
		Access:   submitted,
		Messages: resource.Messages{Created: "Contact message sent successfully"},
	}
}
