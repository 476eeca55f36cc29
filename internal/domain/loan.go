package domain

// LoanPeriodDays is the default lending window. A loan is due this many
// days after it is borrowed, and a single extension pushes the due date
// out by the same number of days.
const LoanPeriodDays = 14

// Loan records one user borrowing one copy of one book for a bounded
// period. The user and book references are immutable after creation; a
// loan is never reassigned.
//
// A loan is Open while ReturnedDate is nil and Returned (terminal) once
// it is set. The derived predicates below are the single source of
// truth for every read path; none of them is stored.
type Loan struct {
	Record
	UserID       string `json:"userId"`
	BookID       string `json:"bookId"`
	BorrowedDate Date   `json:"borrowedDate"`
	DueDate      Date   `json:"dueDate"`
	ReturnedDate *Date  `json:"returnedDate,omitempty"`
}

// NewLoan creates an open loan borrowed on the given day, due one loan
// period later.
func NewLoan(userID, bookID string, borrowedOn Date) *Loan {
	return &Loan{
		UserID:       userID,
		BookID:       bookID,
		BorrowedDate: borrowedOn,
		DueDate:      borrowedOn.AddDays(LoanPeriodDays),
	}
}

// Active reports whether the loan is still open (not returned).
func (l *Loan) Active() bool {
	return l.ReturnedDate == nil
}

// Overdue reports whether the loan is open and past due as of today.
// A returned loan is never overdue, however late the return was.
func (l *Loan) Overdue(today Date) bool {
	return l.Active() && today.After(l.DueDate)
}

// Extended reports whether the due date has been pushed past the
// original lending window. This same test gates a second extension.
func (l *Loan) Extended() bool {
	return l.DueDate.After(l.BorrowedDate.AddDays(LoanPeriodDays))
}
