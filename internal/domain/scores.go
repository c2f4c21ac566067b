package domain

import "sort"

// Axis identifica uno de los cuatro acumuladores del cuestionario.
type Axis string

const (
	AxisA Axis = "a" // Extroversion
	AxisB Axis = "b" // Introversion
	AxisC Axis = "c" // Foco en la tarea
	AxisD Axis = "d" // Foco en las personas
)

// Valid indica si el eje es una de las cuatro letras conocidas.
func (a Axis) Valid() bool {
	switch a {
	case AxisA, AxisB, AxisC, AxisD:
		return true
	}
	return false
}

// Family devuelve la familia del eje: "ab" (energia social) o "cd" (tarea/personas).
func (a Axis) Family() string {
	switch a {
	case AxisA, AxisB:
		return "ab"
	case AxisC, AxisD:
		return "cd"
	}
	return ""
}

// Scores son los puntajes acumulados por eje. Cada pregunta respondida aporta 5 puntos.
type Scores struct {
	A int `json:"a"`
	B int `json:"b"`
	C int `json:"c"`
	D int `json:"d"`
}

// Add suma delta al eje indicado. Ejes desconocidos se ignoran.
func (s *Scores) Add(axis Axis, delta int) {
	switch axis {
	case AxisA:
		s.A += delta
	case AxisB:
		s.B += delta
	case AxisC:
		s.C += delta
	case AxisD:
		s.D += delta
	}
}

func (s Scores) Get(axis Axis) int {
	switch axis {
	case AxisA:
		return s.A
	case AxisB:
		return s.B
	case AxisC:
		return s.C
	case AxisD:
		return s.D
	}
	return 0
}

func (s Scores) Total() int {
	return s.A + s.B + s.C + s.D
}

// IsNegative detecta puntajes imposibles (por ejemplo, enviados a mano por la API).
func (s Scores) IsNegative() bool {
	return s.A < 0 || s.B < 0 || s.C < 0 || s.D < 0
}

// ColorTotals proyecta los ejes sobre los cuatro cuadrantes.
func (s Scores) ColorTotals() ColorTotals {
	return ColorTotals{
		Red:    s.A + s.C, // Extrovertido + Tarea
		Yellow: s.A + s.D, // Extrovertido + Personas
		Green:  s.B + s.D, // Introvertido + Personas
		Blue:   s.B + s.C, // Introvertido + Tarea
	}
}

// Dominant devuelve el color con mayor total usando el mismo desempate que Ranked.
func (s Scores) Dominant() Color {
	return s.ColorTotals().Ranked()[0]
}

// Color es uno de los cuatro estilos de comunicacion.
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
)

// AllColors devuelve los colores en orden de declaracion. Ese orden resuelve los empates.
func AllColors() []Color {
	return []Color{ColorRed, ColorYellow, ColorGreen, ColorBlue}
}

// Index es la posicion del color en el orden de declaracion, o -1 si no es valido.
func (c Color) Index() int {
	switch c {
	case ColorRed:
		return 0
	case ColorYellow:
		return 1
	case ColorGreen:
		return 2
	case ColorBlue:
		return 3
	}
	return -1
}

func (c Color) Valid() bool {
	return c.Index() >= 0
}

type ColorTotals struct {
	Red    int `json:"red"`
	Yellow int `json:"yellow"`
	Green  int `json:"green"`
	Blue   int `json:"blue"`
}

func (t ColorTotals) Get(c Color) int {
	switch c {
	case ColorRed:
		return t.Red
	case ColorYellow:
		return t.Yellow
	case ColorGreen:
		return t.Green
	case ColorBlue:
		return t.Blue
	}
	return 0
}

func (t ColorTotals) Sum() int {
	return t.Red + t.Yellow + t.Green + t.Blue
}

// Ranked ordena los colores de mayor a menor total.
// Los empates conservan el orden rojo > amarillo > verde > azul.
func (t ColorTotals) Ranked() [4]Color {
	colors := AllColors()
	sort.SliceStable(colors, func(i, j int) bool {
		return t.Get(colors[i]) > t.Get(colors[j])
	})
	var ranked [4]Color
	copy(ranked[:], colors)
	return ranked
}

// Shares devuelve la proporcion de cada color (rojo, amarillo, verde, azul) sobre el total.
// Con total cero todas las proporciones son cero.
func (t ColorTotals) Shares() []float32 {
	shares := make([]float32, 4)
	sum := t.Sum()
	if sum == 0 {
		return shares
	}
	for i, c := range AllColors() {
		shares[i] = float32(t.Get(c)) / float32(sum)
	}
	return shares
}

// ColorPair es un par no ordenado de colores, normalizado al orden de declaracion.
type ColorPair struct {
	First  Color
	Second Color
}

// NewColorPair normaliza el par para que {x,y} y {y,x} sean la misma clave.
func NewColorPair(x, y Color) ColorPair {
	if y.Index() < x.Index() {
		x, y = y, x
	}
	return ColorPair{First: x, Second: y}
}
