package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/dashboard"
)

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04"}

// consoleError carries the message shown to the user and the underlying error.
type consoleError struct {
	message string
	err     error
}

func (e *consoleError) Error() string { return e.message }

func (e *consoleError) Unwrap() error { return e.err }

type console struct {
	ctx context.Context
	ui  *dashboard.Controller
	out io.Writer
}

func (c *console) dispatch(args []string) error {
	name, rest := args[0], args[1:]
	switch name {
	case "register":
		return c.register(rest)
	case "login":
		return c.login(rest)
	}

	if err := c.ui.Restore(c.ctx).Wait(); err != nil {
		return err
	}

	switch name {
	case "logout":
		return c.logout()
	case "whoami":
		return c.whoami()
	case "rooms":
		return c.rooms(rest)
	case "bookings":
		return c.bookingsCmd(rest)
	case "overview":
		return c.overview()
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	return pflag.NewFlagSet(name, pflag.ContinueOnError)
}

func (c *console) await(p *dashboard.Pending, message func() string) error {
	if err := p.Wait(); err != nil {
		return &consoleError{message: message(), err: err}
	}
	return nil
}

func (c *console) authError() string     { return c.ui.Auth().Error }
func (c *console) roomsError() string    { return c.ui.Rooms().Error }
func (c *console) bookingsError() string { return c.ui.Bookings().Error }

func (c *console) register(args []string) error {
	fs := newFlagSet("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	confirm := fs.String("confirm", "", "password confirmation")
	admin := fs.Bool("admin", false, "register as administrator")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *password == "" {
		*password = promptPassword("Password: ")
		if *confirm == "" {
			*confirm = promptPassword("Confirm password: ")
		}
	}

	role := application.RoleUser
	if *admin {
		role = application.RoleAdmin
	}
	err := c.await(c.ui.Register(c.ctx, application.RegisterParams{
		Name:            *name,
		Email:           *email,
		Password:        *password,
		ConfirmPassword: *confirm,
		Role:            role,
	}), c.authError)
	if err != nil {
		return err
	}
	return c.whoami()
}

func (c *console) login(args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		*password = promptPassword("Password: ")
	}
	if err := c.await(c.ui.Login(c.ctx, *email, *password), c.authError); err != nil {
		return err
	}
	return c.whoami()
}

// promptPassword reads a password from the terminal with echo disabled. It
// returns "" when stdin is not a terminal.
func promptPassword(label string) string {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ""
	}
	fmt.Fprint(os.Stderr, label)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return ""
	}
	return string(password)
}

func (c *console) logout() error {
	if err := c.await(c.ui.Logout(c.ctx), c.authError); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "logged out")
	return nil
}

func (c *console) whoami() error {
	auth := c.ui.Auth()
	if !auth.IsLoggedIn {
		fmt.Fprintln(c.out, "not logged in")
		return nil
	}
	fmt.Fprintf(c.out, "%s <%s> %s\n", auth.User.Name, auth.User.Email, auth.User.Role)
	return nil
}

func (c *console) rooms(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("rooms: expected list, create, update or delete")
	}
	sub, rest := args[0], args[1:]

	fs := newFlagSet("rooms " + sub)
	id := fs.String("id", "", "room id")
	name := fs.String("name", "", "room name")
	description := fs.String("description", "", "room description")
	capacity := fs.String("capacity", "", "number of seats")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	var pending *dashboard.Pending
	switch sub {
	case "list":
		pending = c.ui.LoadRooms(c.ctx)
	case "create":
		pending = c.ui.CreateRoom(c.ctx, application.RoomInput{Name: *name, Description: *description, Capacity: *capacity})
	case "update":
		var patch application.RoomPatch
		if fs.Changed("name") {
			patch.Name = name
		}
		if fs.Changed("description") {
			patch.Description = description
		}
		if fs.Changed("capacity") {
			patch.Capacity = capacity
		}
		pending = c.ui.UpdateRoom(c.ctx, *id, patch)
	case "delete":
		pending = c.ui.DeleteRoom(c.ctx, *id)
	default:
		return fmt.Errorf("rooms: unknown subcommand %q", sub)
	}
	if err := c.await(pending, c.roomsError); err != nil {
		return err
	}
	if sub != "list" {
		if err := c.await(c.ui.LoadRooms(c.ctx), c.roomsError); err != nil {
			return err
		}
	}
	printRooms(c.out, c.ui.Rooms().Items)
	return nil
}

func (c *console) bookingsCmd(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("bookings: expected list, create, update, delete or free")
	}
	sub, rest := args[0], args[1:]

	fs := newFlagSet("bookings " + sub)
	id := fs.String("id", "", "booking id")
	room := fs.String("room", "", "room id")
	title := fs.String("title", "", "booking title")
	description := fs.String("description", "", "booking description")
	start := fs.String("start", "", "start time (RFC 3339 or 2006-01-02 15:04)")
	end := fs.String("end", "", "end time (RFC 3339 or 2006-01-02 15:04)")
	participants := fs.String("participants", "", "comma separated participant emails")
	future := fs.Bool("future", false, "only bookings that have not ended")
	sorted := fs.Bool("sort", true, "order by start time")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	startAt, err := parseTime(*start)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	endAt, err := parseTime(*end)
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}
	input := application.BookingInput{
		RoomID:       *room,
		Title:        *title,
		Description:  *description,
		Start:        startAt,
		End:          endAt,
		Participants: *participants,
	}

	var pending *dashboard.Pending
	switch sub {
	case "list":
		pending = c.ui.LoadBookings(c.ctx, application.BookingFilter{RoomID: *room, OnlyFuture: *future, SortByStart: *sorted})
	case "create":
		pending = c.ui.CreateBooking(c.ctx, input)
	case "update":
		pending = c.ui.UpdateBooking(c.ctx, *id, input)
	case "delete":
		pending = c.ui.DeleteBooking(c.ctx, *id)
	case "free":
		free, err := c.ui.IsRoomFree(c.ctx, *room, startAt, endAt)
		if err != nil {
			return &consoleError{message: c.bookingsError(), err: err}
		}
		if free {
			fmt.Fprintf(c.out, "%s is free\n", *room)
		} else {
			fmt.Fprintf(c.out, "%s is busy\n", *room)
		}
		return nil
	default:
		return fmt.Errorf("bookings: unknown subcommand %q", sub)
	}
	if err := c.await(pending, c.bookingsError); err != nil {
		return err
	}

	for _, warning := range c.ui.Bookings().Warnings {
		fmt.Fprintf(c.out, "warning: overlaps booking %s in room %s\n", warning.BookingID, warning.RoomID)
	}
	if sub != "list" {
		if err := c.await(c.ui.LoadBookings(c.ctx, application.BookingFilter{SortByStart: true}), c.bookingsError); err != nil {
			return err
		}
	}
	printBookings(c.out, c.ui.Bookings().Items, c.ui)
	return nil
}

func (c *console) overview() error {
	if err := c.await(c.ui.LoadRooms(c.ctx), c.roomsError); err != nil {
		return err
	}
	if err := c.await(c.ui.LoadBookings(c.ctx, application.BookingFilter{OnlyFuture: true}), c.bookingsError); err != nil {
		return err
	}

	for _, entry := range c.ui.Overview() {
		fmt.Fprintf(c.out, "%s  %s (%d)\n", entry.Room.ID, entry.Room.Name, entry.Room.Capacity)
		if len(entry.Upcoming) == 0 {
			fmt.Fprintln(c.out, "  no upcoming bookings")
			continue
		}
		for _, booking := range entry.Upcoming {
			fmt.Fprintf(c.out, "  %s  %s-%s  %s (%s)\n",
				booking.ID,
				booking.Start.Local().Format("2006-01-02 15:04"),
				booking.End.Local().Format("15:04"),
				booking.Title,
				booking.UserName,
			)
		}
	}
	return nil
}

func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", value)
}

func printRooms(w io.Writer, rooms []application.Room) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCAPACITY\tDESCRIPTION")
	for _, room := range rooms {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", room.ID, room.Name, room.Capacity, room.Description)
	}
	_ = tw.Flush()
}

func printBookings(w io.Writer, bookings []application.Booking, ui *dashboard.Controller) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROOM\tSTART\tEND\tTITLE\tAUTHOR\tPARTICIPANTS\tMANAGE")
	for _, booking := range bookings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%t\n",
			booking.ID,
			booking.RoomID,
			booking.Start.Local().Format("2006-01-02 15:04"),
			booking.End.Local().Format("2006-01-02 15:04"),
			booking.Title,
			booking.UserName,
			strings.Join(booking.Participants, ","),
			ui.CanManage(booking),
		)
	}
	_ = tw.Flush()
}
