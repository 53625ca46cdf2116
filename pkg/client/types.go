package client

import "time"

// Meta is assigned by the server on every record.
type Meta struct {
	ID        string    `json:"id,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

type Price struct {
	Type     string   `json:"type,omitempty"`
	Amount   *float64 `json:"amount,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Period   string   `json:"period,omitempty"`
}

type Budget struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

type Service struct {
	Meta
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"shortDescription"`
	Icon             string   `json:"icon"`
	Features         []string `json:"features"`
	Price            *Price   `json:"price,omitempty"`
	Category         string   `json:"category"`
	IsActive         *bool    `json:"isActive,omitempty"`
	Order            float64  `json:"order,omitempty"`
}

type Product struct {
	Meta
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"shortDescription"`
	Category         string   `json:"category"`
	Features         []string `json:"features"`
	Technologies     []string `json:"technologies"`
	Images           []string `json:"images,omitempty"`
	DemoURL          string   `json:"demoUrl,omitempty"`
	Price            *Price   `json:"price,omitempty"`
	IsActive         *bool    `json:"isActive,omitempty"`
	IsFeatured       *bool    `json:"isFeatured,omitempty"`
	Order            float64  `json:"order,omitempty"`
}

type Appointment struct {
	Meta
	ClientName      string `json:"clientName"`
	ClientEmail     string `json:"clientEmail"`
	ClientPhone     string `json:"clientPhone"`
	Company         string `json:"company,omitempty"`
	ServiceType     string `json:"serviceType"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Message         string `json:"message,omitempty"`
	Status          string `json:"status,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

type Inquiry struct {
	Meta
	ClientName  string  `json:"clientName"`
	ClientEmail string  `json:"clientEmail"`
	ClientPhone string  `json:"clientPhone,omitempty"`
	Company     string  `json:"company,omitempty"`
	Subject     string  `json:"subject"`
	Message     string  `json:"message"`
	ServiceType string  `json:"serviceType,omitempty"`
	Budget      *Budget `json:"budget,omitempty"`
	Timeline    string  `json:"timeline,omitempty"`
	Status      string  `json:"status,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	AssignedTo  string  `json:"assignedTo,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

type Testimonial struct {
	Meta
	ClientName     string  `json:"clientName"`
	ClientPosition string  `json:"clientPosition,omitempty"`
	ClientCompany  string  `json:"clientCompany,omitempty"`
	ClientImage    string  `json:"clientImage,omitempty"`
	Content        string  `json:"content"`
	Rating         int     `json:"rating"`
	ProjectType    string  `json:"projectType,omitempty"`
	Status         string  `json:"status,omitempty"`
	IsFeatured     *bool   `json:"isFeatured,omitempty"`
	Order          float64 `json:"order,omitempty"`
}

type TeamMember struct {
	Meta
	Name     string   `json:"name"`
	Position string   `json:"position"`
	Bio      string   `json:"bio"`
	Image    string   `json:"image,omitempty"`
	Email    string   `json:"email,omitempty"`
	LinkedIn string   `json:"linkedin,omitempty"`
	Twitter  string   `json:"twitter,omitempty"`
	Skills   []string `json:"skills,omitempty"`
	IsActive *bool    `json:"isActive,omitempty"`
	Order    float64  `json:"order,omitempty"`
}

type BlogPost struct {
	Meta
	Title         string     `json:"title"`
	Slug          string     `json:"slug,omitempty"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt"`
	FeaturedImage string     `json:"featuredImage,omitempty"`
	Author        string     `json:"author,omitempty"`
	Category      string     `json:"category"`
	Tags          []string   `json:"tags,omitempty"`
	Status        string     `json:"status,omitempty"`
	IsPublished   bool       `json:"isPublished,omitempty"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	ReadTime      int        `json:"readTime,omitempty"`
	Views         int        `json:"views,omitempty"`
}

type ContactMessage struct {
	Meta
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
}
