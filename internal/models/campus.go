package models

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Campus    string `json:"campus"`
	Role      Role   `json:"role"`
}

type Book struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	CoverURL    string `json:"coverUrl"`
	Campus      string `json:"campus"`
	IsAvailable bool   `json:"isAvailable"`
}

// LibraryTransaction is a book loan. ReturnDate is nil while the book is out.
type LibraryTransaction struct {
	ID         string     `json:"id"`
	BookID     string     `json:"bookId"`
	UserID     string     `json:"userId"`
	IssueDate  time.Time  `json:"issueDate"`
	DueDate    time.Time  `json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate"`
}

func (lt LibraryTransaction) Open() bool {
	return lt.ReturnDate == nil
}

type ResourceType string

const (
	ResourceNotes      ResourceType = "notes"
	ResourceProjectKit ResourceType = "project-kit"
	ResourcePaper      ResourceType = "paper"
)

type AcademicResource struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        ResourceType `json:"type"`
	Uploader    string       `json:"uploader"`
	Campus      string       `json:"campus"`
	DownloadURL string       `json:"downloadUrl"`
	Description string       `json:"description"`
}
