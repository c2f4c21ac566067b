package assessment

import "colors-coach/internal/domain"

// ColorProfile describe un estilo de comunicacion.
type ColorProfile struct {
	Name                string   `json:"name"`
	Adjective           string   `json:"adjective"`
	General             string   `json:"general"`
	Strengths           []string `json:"strengths"`
	Weaknesses          []string `json:"weaknesses"`
	RecommendationFocus string   `json:"recommendation_focus"`
}

func (p ColorProfile) clone() ColorProfile {
	p.Strengths = append([]string(nil), p.Strengths...)
	p.Weaknesses = append([]string(nil), p.Weaknesses...)
	return p
}

// KnowledgeBase agrupa los textos fijos del generador de reportes.
// Se construye una vez al iniciar el proceso y solo se expone por copia.
type KnowledgeBase struct {
	profiles       map[domain.Color]ColorProfile
	insights       map[domain.ColorPair]string
	defaultInsight string
	closings       map[domain.ColorPair]string
	defaultClosing string
	indeterminate  domain.Analysis
}

// Profile devuelve la ficha del color. Un color desconocido devuelve una ficha vacia.
func (kb *KnowledgeBase) Profile(c domain.Color) ColorProfile {
	return kb.profiles[c].clone()
}

// Insight devuelve el texto de la combinacion {x,y}, sin importar el orden.
func (kb *KnowledgeBase) Insight(x, y domain.Color) string {
	if text, ok := kb.insights[domain.NewColorPair(x, y)]; ok {
		return text
	}
	return kb.defaultInsight
}

// StrengthClosing cierra el parrafo de fortalezas para la combinacion {x,y}.
func (kb *KnowledgeBase) StrengthClosing(x, y domain.Color) string {
	if text, ok := kb.closings[domain.NewColorPair(x, y)]; ok {
		return text
	}
	return kb.defaultClosing
}

// Indeterminate es el reporte fijo cuando no hay puntaje para ordenar.
func (kb *KnowledgeBase) Indeterminate() domain.Analysis {
	return kb.indeterminate
}

// DefaultKnowledgeBase construye la base de conocimiento de los cuatro colores.
func DefaultKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		profiles: map[domain.Color]ColorProfile{
			domain.ColorRed: {
				Name:      "Rojo",
				Adjective: "el decidido",
				General:   "Liderazgo natural, determinacion y foco en el objetivo. Estas orientado a resultados, disfrutas los desafios y no temes tomar decisiones rapidas.",
				Strengths: []string{
					"la capacidad de impulsar procesos",
					"la firmeza para decidir bajo presion",
					"una comunicacion directa y eficaz",
					"la tenacidad para alcanzar metas",
				},
				Weaknesses: []string{
					"impaciencia",
					"una actitud que otros perciben como dominante o agresiva",
					"dificultad para escuchar opiniones diferentes",
					"foco en el 'que' a costa del 'como'",
				},
				RecommendationFocus: "Combinar la determinacion con escucha activa y empatia",
			},
			domain.ColorYellow: {
				Name:      "Amarillo",
				Adjective: "el influyente",
				General:   "Carisma, optimismo y capacidad de entusiasmar a otros. Eres creativo, sociable y obtienes energia de la interaccion social.",
				Strengths: []string{
					"la creacion de vinculos e influencia social",
					"la motivacion a traves de la vision y el entusiasmo",
					"el pensamiento creativo con mirada de conjunto",
					"la generacion de un clima positivo",
				},
				Weaknesses: []string{
					"dificultad con los detalles y el orden",
					"la tendencia a evitar conflictos",
					"un exceso de optimismo que lleva a planificar poco",
					"la necesidad de reconocimiento y feedback positivo",
				},
				RecommendationFocus: "Traducir las grandes ideas en planes de trabajo concretos",
			},
			domain.ColorGreen: {
				Name:      "Verde",
				Adjective: "el solidario",
				General:   "Estabilidad, armonia y una importancia central de las relaciones interpersonales. Eres un gran companero de equipo, paciente, sabes escuchar y eres un ancla de apoyo para otros.",
				Strengths: []string{
					"la escucha y la empatia",
					"la confiabilidad y la estabilidad",
					"la mediacion y resolucion de conflictos",
					"la construccion de un entorno de trabajo armonico",
				},
				Weaknesses: []string{
					"la evitacion de conflictos y confrontaciones",
					"resistencia a los cambios repentinos",
					"dificultad para tomar decisiones rapidas",
					"la tendencia a postergar tus necesidades por las del grupo",
				},
				RecommendationFocus: "Expresar tus opiniones y posturas de forma asertiva y respetuosa",
			},
			domain.ColorBlue: {
				Name:      "Azul",
				Adjective: "el preciso",
				General:   "Pensamiento analitico, rigurosidad y busqueda de calidad sin concesiones. Te basas en datos y cuidas los detalles, los procedimientos y el orden.",
				Strengths: []string{
					"la planificacion y la organizacion",
					"la precision y la atencion al detalle",
					"el pensamiento logico y analitico",
					"el cuidado de estandares altos",
				},
				Weaknesses: []string{
					"un exceso de critica (hacia ti y hacia los demas)",
					"la paralisis por analisis",
					"una imagen fria, distante o pesimista",
					"dificultad para ser flexible e improvisar",
				},
				RecommendationFocus: "Equilibrar la busqueda de la perfeccion con la necesidad de avanzar de forma pragmatica",
			},
		},
		insights: map[domain.ColorPair]string{
			domain.NewColorPair(domain.ColorRed, domain.ColorYellow):   "eres un lider carismatico que sabe movilizar a las personas tanto con objetivos claros como con entusiasmo y una vision compartida.",
			domain.NewColorPair(domain.ColorRed, domain.ColorBlue):     "eres un gestor estrategico y eficiente, que combina la busqueda decidida de resultados con una planificacion minuciosa basada en datos.",
			domain.NewColorPair(domain.ColorRed, domain.ColorGreen):    "eres un lider contenedor, que equilibra la necesidad de alcanzar metas con el cuidado del bienestar del equipo.",
			domain.NewColorPair(domain.ColorYellow, domain.ColorGreen): "eres el 'pegamento' social del grupo, y te destacas por generar un clima positivo, cooperacion y armonia gracias a tus habilidades interpersonales.",
			domain.NewColorPair(domain.ColorYellow, domain.ColorBlue):  "eres un solucionador creativo de problemas, capaz de proponer ideas innovadoras y tambien de analizarlas con logica y orden.",
			domain.NewColorPair(domain.ColorGreen, domain.ColorBlue):   "eres un companero confiable y comprometido, que combina rigurosidad y busqueda de calidad con paciencia, estabilidad y disposicion a ayudar.",
		},
		defaultInsight: "combinas recursos de ambos estilos y puedes alternar entre ellos segun lo pida la situacion.",
		closings: map[domain.ColorPair]string{
			domain.NewColorPair(domain.ColorRed, domain.ColorBlue):     "sabe liderar proyectos complejos de principio a fin, desde la idea hasta la ejecucion precisa.",
			domain.NewColorPair(domain.ColorYellow, domain.ColorGreen): "se destaca construyendo equipos unidos y sosteniendo la moral alta, incluso en epocas dificiles.",
		},
		defaultClosing: "muestra flexibilidad y puede adaptarse a una gran variedad de personas y situaciones.",
		indeterminate: domain.Analysis{
			General:         "No fue posible determinar un perfil dominante. Es posible que tus respuestas hayan sido completamente equilibradas o que no hayas respondido ninguna pregunta.",
			Strengths:       "La capacidad de ver todos los lados de una situacion por igual.",
			Weaknesses:      "Dificultad para decidir un curso de accion preferido.",
			Recommendations: "Observa en que situaciones te sientes mas comodo para identificar tus tendencias naturales, y vuelve a completar el cuestionario.",
		},
	}
}
