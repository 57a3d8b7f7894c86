package core

import "time"

// dueDay is the fixed day of the following month on which both withholdings
// fall due.
const dueDay = 20

// DueDates derives the collection due dates from the invoice and payment
// dates. Each due date is the source date advanced one calendar month with the
// day then forced to dueDay. The day is forced after the month advance so a
// day-31 source does not normalize past the target month (Jan 31 -> Feb 20,
// not Mar 20). December sources roll into January of the next year. A zero
// source date yields a zero due date.
func DueDates(issue, payment Date) (irDue, csrfDue Date) {
	return nextMonthDueDay(issue), nextMonthDueDay(payment)
}

func nextMonthDueDay(d Date) Date {
	if d.IsZero() {
		return Date{}
	}
	y, m, _ := d.Date()
	// time.Date normalizes month 13 into January of the next year.
	return Date{Time: time.Date(y, m+1, dueDay, 0, 0, 0, 0, time.UTC)}
}

// DueLabel renders both due dates as a single display string. The label is
// display-only; overdue and period checks work on the typed due dates.
func DueLabel(irDue, csrfDue Date) string {
	return "IR: " + irDue.Display() + " | CSRF: " + csrfDue.Display()
}
