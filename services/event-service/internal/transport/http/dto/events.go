package dto

type LocationDto struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lon *float64 `json:"lon" validate:"required"`
}

// UpdateLocationDto changes only the coordinates that are present.
type UpdateLocationDto struct {
	Lat *float64 `json:"lat" validate:"omitempty,min=0"`
	Lon *float64 `json:"lon" validate:"omitempty,min=0"`
}

type NewEventDto struct {
	Annotation        string       `json:"annotation" validate:"required,min=20,max=2000"`
	Category          int64        `json:"category" validate:"required,gt=0"`
	Description       string       `json:"description" validate:"required,min=20,max=7000"`
	EventDate         *Time        `json:"eventDate" validate:"required"`
	Location          *LocationDto `json:"location" validate:"required"`
	Paid              bool         `json:"paid"`
	ParticipantLimit  *int         `json:"participantLimit" validate:"omitempty,min=0"`
	RequestModeration *bool        `json:"requestModeration"`
	Title             string       `json:"title" validate:"required,min=3,max=120"`
}

// UpdateEventFields are the fields both owner and admin may patch.
type UpdateEventFields struct {
	Annotation        *string            `json:"annotation" validate:"omitempty,min=20,max=2000"`
	Category          *int64             `json:"category" validate:"omitempty,gt=0"`
	Description       *string            `json:"description" validate:"omitempty,min=20,max=7000"`
	EventDate         *Time              `json:"eventDate"`
	Location          *UpdateLocationDto `json:"location"`
	Paid              *bool              `json:"paid"`
	ParticipantLimit  *int               `json:"participantLimit" validate:"omitempty,min=0"`
	RequestModeration *bool              `json:"requestModeration"`
	Title             *string            `json:"title" validate:"omitempty,min=3,max=120"`
	StateAction       *string            `json:"stateAction"`
}

type UpdateEventUserRequest struct {
	UpdateEventFields
}

type UpdateEventAdminRequest struct {
	UpdateEventFields
}

type CategoryDto struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type UserShortDto struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type EventShortDto struct {
	ID                int64        `json:"id"`
	Annotation        string       `json:"annotation"`
	Category          CategoryDto  `json:"category"`
	ConfirmedRequests int64        `json:"confirmedRequests"`
	EventDate         Time         `json:"eventDate"`
	Initiator         UserShortDto `json:"initiator"`
	Paid              bool         `json:"paid"`
	Title             string       `json:"title"`
	Views             int64        `json:"views"`
}

type EventFullDto struct {
	ID                int64        `json:"id"`
	Annotation        string       `json:"annotation"`
	Category          CategoryDto  `json:"category"`
	ConfirmedRequests int64        `json:"confirmedRequests"`
	CreatedOn         Time         `json:"createdOn"`
	Description       string       `json:"description"`
	EventDate         Time         `json:"eventDate"`
	Initiator         UserShortDto `json:"initiator"`
	Location          Location     `json:"location"`
	Paid              bool         `json:"paid"`
	ParticipantLimit  int          `json:"participantLimit"`
	PublishedOn       *Time        `json:"publishedOn,omitempty"`
	RequestModeration bool         `json:"requestModeration"`
	State             string       `json:"state"`
	Title             string       `json:"title"`
	Views             int64        `json:"views"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
