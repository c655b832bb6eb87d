package domain

type Category struct {
	ID   int64
	Name string
}

type User struct {
	ID    int64
	Name  string
	Email string
}

type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)
