package services

import (
	"bytes"
	"database/sql"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	intconfig "github.com/natannielz/Ticket-Bus-sub000/internal/config"
	"github.com/natannielz/Ticket-Bus-sub000/internal/domain"
	"github.com/natannielz/Ticket-Bus-sub000/internal/repositories"
	"github.com/natannielz/Ticket-Bus-sub000/internal/utils"
)

// DocsService menghasilkan PDF e-ticket per booking.
type DocsService struct {
	BookingRepo repositories.BookingRepo
	DB          *sql.DB
	RequestID   string
}

func (s DocsService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s DocsService) bookings() repositories.BookingRepo {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepo{DB: s.db()}
}

type ticketData struct {
	BookingCode    string
	PassengerName  string
	PassengerPhone string
	SeatLabels     string
	SeatCount      int
	RouteName      string
	Origin         string
	Destination    string
	TripDate       string
	DepartureTime  string
	ArmadaCode     string
	PlateNumber    string
	TotalPrice     int64
	Status         string
}

func (s DocsService) GenerateETicket(bookingID int64) ([]byte, string, error) {
	b, err := s.bookings().GetByID(bookingID)
	if err == sql.ErrNoRows {
		return nil, "", domain.NotFoundError{Resource: "booking", Err: err}
	}
	if err != nil {
		return nil, "", domain.InternalError{Err: err}
	}
	if b.Status == "cancelled" {
		return nil, "", domain.ValidationError{Field: "booking", Msg: "booking sudah dibatalkan"}
	}

	d := ticketData{
		BookingCode:    b.BookingCode,
		PassengerName:  b.PassengerName,
		PassengerPhone: b.PassengerPhone,
		SeatLabels:     b.SeatLabels,
		SeatCount:      b.SeatCount,
		TripDate:       b.TripDate,
		TotalPrice:     b.TotalPrice,
		Status:         b.Status,
	}

	// kolom jadwal/rute/armada untuk header tiket
	err = s.db().QueryRow(`
		SELECT r.name, r.origin, r.destination, s.departure_time, a.code, a.plate_number
		FROM schedules s
		JOIN routes r ON r.id = s.route_id
		JOIN armadas a ON a.id = s.armada_id
		WHERE s.id = ?
	`, b.ScheduleID).Scan(&d.RouteName, &d.Origin, &d.Destination, &d.DepartureTime, &d.ArmadaCode, &d.PlateNumber)
	if err != nil && err != sql.ErrNoRows {
		return nil, "", domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "docs", "generate_eticket", fmt.Sprintf("booking_id=%d", bookingID))
	return buildETicketPDF(d)
}

func buildETicketPDF(d ticketData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Kode Booking   : %s", safe(d.BookingCode, "-")),
		fmt.Sprintf("Nama Penumpang : %s", safe(d.PassengerName, "-")),
		fmt.Sprintf("No HP          : %s", safe(d.PassengerPhone, "-")),
		fmt.Sprintf("Rute           : %s (%s -> %s)", safe(d.RouteName, "-"), safe(d.Origin, "-"), safe(d.Destination, "-")),
		fmt.Sprintf("Tanggal/Jam    : %s %s", safe(d.TripDate, "-"), safe(d.DepartureTime, "-")),
		fmt.Sprintf("Kursi          : %s (%d seat)", safe(d.SeatLabels, "-"), d.SeatCount),
		fmt.Sprintf("Armada         : %s / %s", safe(d.ArmadaCode, "-"), safe(d.PlateNumber, "-")),
		fmt.Sprintf("Total          : %s", utils.FormatRupiah(d.TotalPrice)),
		fmt.Sprintf("Status         : %s", safe(d.Status, "-")),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Catatan: Harap tunjukkan e-ticket ini saat keberangkatan.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("eticket-%s.pdf", strings.ToLower(safe(d.BookingCode, "booking")))
	return buf.Bytes(), filename, nil
}

func safe(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}
