// Package render рисует недельную сетку занятий клиники в PNG.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/schedule"
)

// Константы размеров и отступов
const (
	imageWidth          = 1400
	imageHeight         = 900
	headerHeight        = 100
	leftLabelsWidth     = 80
	legendWidth         = 140
	dayPaddingX         = 8
	minSessionHeight    = 8.0
	sessionBorderRadius = 6.0
	shadowOffset        = 3.0
	hourPaddingTop      = 1
	hourPaddingBot      = 1
	defaultMinHour      = 9
	defaultMaxHour      = 20
)

const (
	titleFontSize      = 25.0
	dayFontSize        = 24.0
	hourLabelFontSize  = 16.0
	sessionFontSize    = 15.0
	legendItemFontSize = 12.0
)

var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 220}
	hourLabelColor = color.RGBA{110, 115, 120, 200}
	hourLineColor  = color.NRGBA{150, 150, 150, 255}
	todayBgColor   = color.NRGBA{255, 99, 71, 125}
	evenDayColor   = color.NRGBA{240, 240, 240, 255}
	oddDayColor    = color.NRGBA{220, 220, 220, 255}

	openColor      = color.RGBA{133, 193, 85, 220}
	fullColor      = color.RGBA{255, 182, 193, 255}
	emergencyColor = color.RGBA{255, 204, 102, 230}
	canceledColor  = color.RGBA{158, 158, 158, 200}

	sessionTextColor     = color.RGBA{20, 24, 28, 230}
	canceledTextColor    = color.RGBA{70, 70, 70, 255}
	sessionShadowColor   = color.RGBA{0, 0, 0, 20}
	legendItemTextColor  = color.RGBA{70, 74, 78, 220}
	legendTitleTextColor = color.RGBA{90, 95, 100, 220}
)

// WeekGrid данные для отрисовки недели учителя
type WeekGrid struct {
	Days     []time.Time
	Sessions []*model.ClinicSession
	// Enrolled число записей по id занятия
	Enrolled map[int64]int
	// Today подсвечивается, если попадает в неделю
	Today time.Time
}

type hourRange struct {
	start int
	end   int
	total int
}

var (
	fontsOnce    sync.Once
	regularFont  *opentype.Font
	boldFont     *opentype.Font
	fontParseErr error
)

func parseFonts() {
	regularFont, fontParseErr = opentype.Parse(goregular.TTF)
	if fontParseErr != nil {
		return
	}
	boldFont, fontParseErr = opentype.Parse(gobold.TTF)
}

// setFont выбирает шрифт Go нужного размера, при ошибке basicfont
func setFont(dc *gg.Context, size float64, bold bool) {
	fontsOnce.Do(parseFonts)
	if fontParseErr != nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}

	f := regularFont
	if bold {
		f = boldFont
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}
	dc.SetFontFace(face)
}

// WeekImage рисует неделю занятий в PNG. Отменённые занятия остаются на сетке
// серыми с пометкой "не состоялось".
func WeekImage(grid WeekGrid) ([]byte, error) {
	if len(grid.Days) == 0 {
		return nil, fmt.Errorf("render week: no days")
	}

	byDay := groupByDay(grid.Sessions)
	hours := calculateHourRange(grid.Sessions)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()

	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / len(grid.Days)
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total)

	drawHeader(dc, grid.Days[0], grid.Days[len(grid.Days)-1])
	drawHourLabels(dc, hours, cellHeight)

	for i, day := range grid.Days {
		x := float64(leftLabelsWidth + i*dayWidth)
		y := float64(headerHeight)

		drawDayBackground(dc, x, y, dayWidth, dayHeight, i, day.Equal(schedule.DateOf(grid.Today)))
		drawDayHeader(dc, day, x, y, dayWidth)
		drawHourLines(dc, x, y, dayWidth, hours, cellHeight)
		for _, s := range byDay[day.Format(time.DateOnly)] {
			drawSession(dc, s, grid.Enrolled[s.ID], x, y, dayWidth, hours, cellHeight)
		}
	}

	drawLegend(dc, leftLabelsWidth+len(grid.Days)*dayWidth)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func groupByDay(sessions []*model.ClinicSession) map[string][]*model.ClinicSession {
	byDay := make(map[string][]*model.ClinicSession)
	for _, s := range sessions {
		key := s.Date.Format(time.DateOnly)
		byDay[key] = append(byDay[key], s)
	}
	return byDay
}

func calculateHourRange(sessions []*model.ClinicSession) hourRange {
	minHour, maxHour := 24, 0
	for _, s := range sessions {
		startH := s.StartTime.Hour()
		endH := s.EndTime.Hour()
		if s.EndTime.Minute() > 0 {
			endH++
		}
		minHour = min(minHour, startH)
		maxHour = max(maxHour, endH)
	}
	if minHour == 24 {
		minHour, maxHour = defaultMinHour, defaultMaxHour
	}

	start := max(minHour-hourPaddingTop, 0)
	end := min(maxHour+hourPaddingBot, 24)
	return hourRange{start: start, end: end, total: end - start}
}

func drawHeader(dc *gg.Context, first, last time.Time) {
	title := monthNames[first.Month()]
	if first.Month() != last.Month() {
		title += " - " + monthNames[last.Month()]
	}
	title += fmt.Sprintf(" %d", first.Year())

	setFont(dc, titleFontSize, true)
	dc.SetColor(textColor)
	_, h := dc.MeasureString(title)
	dc.DrawString(title, float64(leftLabelsWidth), float64(headerHeight)/8+h)
}

func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	setFont(dc, hourLabelFontSize, false)
	dc.SetColor(hourLabelColor)
	for i := 0; i <= hours.total; i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		dc.DrawStringAnchored(fmt.Sprintf("%02d:00", hours.start+i), float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, index int, today bool) {
	switch {
	case today:
		dc.SetColor(todayBgColor)
	case index%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

func drawDayHeader(dc *gg.Context, day time.Time, x, y float64, dayWidth int) {
	setFont(dc, dayFontSize, true)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(day.Format("02.01"), x+float64(dayWidth)/2, y, 0.5, -1)
	dc.DrawStringAnchored(weekdayShort[day.Weekday()], x+float64(dayWidth)/2, y, 0.5, -0.2)
}

func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)
	for i := 0; i <= hours.total; i++ {
		hy := y + float64(i)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

func drawSession(dc *gg.Context, s *model.ClinicSession, enrolled int, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	startHour := float64(s.StartTime) / 60.0
	endHour := float64(s.EndTime) / 60.0

	top := y + (startHour-float64(hours.start))*cellHeight
	height := max((endHour-startHour)*cellHeight, minSessionHeight)
	width := float64(dayWidth) - dayPaddingX*2
	fill := sessionColor(s, enrolled)

	dc.SetColor(sessionShadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, top+2+shadowOffset, width, height-4, sessionBorderRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x+dayPaddingX, top+2, width, height-4, sessionBorderRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+dayPaddingX, top+2, width, height-4, sessionBorderRadius)
	dc.Stroke()

	txtX := x + dayPaddingX + 8
	txtY := top + 18

	setFont(dc, sessionFontSize, true)
	if s.IsCanceled {
		dc.SetColor(canceledTextColor)
	} else {
		dc.SetColor(sessionTextColor)
	}
	dc.DrawString(fmt.Sprintf("%s-%s", s.StartTime, s.EndTime), txtX, txtY)

	if height <= 25 {
		return
	}
	setFont(dc, sessionFontSize-2, false)
	if s.IsCanceled {
		dc.DrawString("не состоялось", txtX, txtY+16)
		return
	}
	dc.DrawString(fmt.Sprintf("%d/%d · #%d", enrolled, s.Capacity, s.ID), txtX, txtY+16)
}

func sessionColor(s *model.ClinicSession, enrolled int) color.RGBA {
	switch {
	case s.IsCanceled:
		return canceledColor
	case enrolled >= s.Capacity:
		return fullColor
	case !s.IsRegular():
		return emergencyColor
	default:
		return openColor
	}
}

func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

func drawLegend(dc *gg.Context, left int) {
	x := float64(left + 10)
	y := float64(imageHeight) - 140.0

	setFont(dc, legendItemFontSize, true)
	dc.SetColor(legendTitleTextColor)
	dc.DrawString("Легенда", x, y)

	items := []struct {
		label string
		clr   color.Color
	}{
		{"Есть места", openColor},
		{"Экстренное", emergencyColor},
		{"Мест нет", fullColor},
		{"Не состоялось", canceledColor},
	}

	const boxW, boxH = 20.0, 14.0
	y += 14
	setFont(dc, legendItemFontSize, false)
	for _, item := range items {
		dc.SetColor(item.clr)
		dc.DrawRoundedRectangle(x, y, boxW, boxH, 3)
		dc.Fill()

		dc.SetColor(legendItemTextColor)
		dc.DrawStringAnchored(item.label, x+boxW+8, y+boxH/2+1, 0, 0.2)
		y += boxH + 12
	}
}

var weekdayShort = map[time.Weekday]string{
	time.Monday:    "Пн",
	time.Tuesday:   "Вт",
	time.Wednesday: "Ср",
	time.Thursday:  "Чт",
	time.Friday:    "Пт",
	time.Saturday:  "Сб",
	time.Sunday:    "Вс",
}

var monthNames = map[time.Month]string{
	time.January:   "Январь",
	time.February:  "Февраль",
	time.March:     "Март",
	time.April:     "Апрель",
	time.May:       "Май",
	time.June:      "Июнь",
	time.July:      "Июль",
	time.August:    "Август",
	time.September: "Сентябрь",
	time.October:   "Октябрь",
	time.November:  "Ноябрь",
	time.December:  "Декабрь",
}
