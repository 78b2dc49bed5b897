package services

import (
	"fmt"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
)

// FallbackService produces deterministic training content when every
// provider fails or the reply cannot be parsed. The output follows the
// same contract as generated content so delivery code never branches.
type FallbackService struct{}

func NewFallbackService() *FallbackService {
	return &FallbackService{}
}

// Build assembles substitute content for a draft in the draft's language.
// Languages without a curated fallback get English.
func (s *FallbackService) Build(draft *models.TrainingDraft, company *models.CompanyProfile) *models.GeneratedTraining {
	count := draft.QuizConfig.QuestionCount
	if count <= 0 {
		count = 5
	}

	if draft.Language == "es" {
		return s.spanish(draft, company, count)
	}
	return s.english(draft, company, count)
}

func (s *FallbackService) english(draft *models.TrainingDraft, company *models.CompanyProfile, count int) *models.GeneratedTraining {
	questions := []models.QuizQuestion{
		{
			Question:    fmt.Sprintf("According to %s safety manual, what is the first required step?", company.Name),
			Options:     []string{"A) Check general guidelines", "B) Complete pre-operation checklist", "C) Ask supervisor for permission", "D) Review standard procedures"},
			Correct:     1,
			Explanation: fmt.Sprintf("%s's manual requires completing the checklist before any operation.", company.Name),
			Type:        "Company Policy",
		},
		{
			Question:    "When should personal protective equipment be inspected?",
			Options:     []string{"A) Once a month", "B) Only after an incident", "C) Before each use", "D) During annual review"},
			Correct:     2,
			Explanation: "PPE must be inspected before every use to catch damage early.",
			Type:        "Safety Procedures",
		},
		{
			Question:    "What should you do if you notice an unsafe condition?",
			Options:     []string{"A) Continue working carefully", "B) Report it to your supervisor immediately", "C) Fix it yourself later", "D) Wait for the next safety meeting"},
			Correct:     1,
			Explanation: "Unsafe conditions must be reported immediately so they can be corrected.",
			Type:        "Safety Procedures",
		},
		{
			Question:    "Who is responsible for following documented procedures?",
			Options:     []string{"A) Supervisors only", "B) The safety department", "C) New employees only", "D) Every employee"},
			Correct:     3,
			Explanation: "Documented procedures apply to everyone regardless of role or tenure.",
			Type:        "Company Policy",
		},
		{
			Question:    "What is the correct response to an equipment malfunction?",
			Options:     []string{"A) Stop, secure the equipment and report it", "B) Restart the equipment", "C) Increase monitoring and continue", "D) Log it at end of shift"},
			Correct:     0,
			Explanation: "Malfunctioning equipment must be stopped and secured before reporting.",
			Type:        "Technical Operations",
		},
		{
			Question:    "Why are quality checkpoints built into each procedure?",
			Options:     []string{"A) To slow down production", "B) To catch defects before they propagate", "C) To satisfy auditors", "D) To track employee output"},
			Correct:     1,
			Explanation: "Checkpoints catch problems early, before defective work moves downstream.",
			Type:        "Quality Control",
		},
		{
			Question:    "When is it acceptable to skip a documented step?",
			Options:     []string{"A) When experienced", "B) When in a hurry", "C) Never without written authorization", "D) When the supervisor is absent"},
			Correct:     2,
			Explanation: "Steps may only be skipped with explicit written authorization.",
			Type:        "Disciplinary Guidelines",
		},
		{
			Question:    "What should be done after completing a training module?",
			Options:     []string{"A) Nothing further", "B) Apply the procedures and ask questions when unsure", "C) File the certificate", "D) Wait for the next assignment"},
			Correct:     1,
			Explanation: "Training only matters when its procedures are applied on the job.",
			Type:        "Onboarding Orientation",
		},
		{
			Question:    "How should chemical containers be handled?",
			Options:     []string{"A) Labeled and stored per the safety data sheet", "B) Stored wherever space allows", "C) Relabeled by shift", "D) Kept open for ventilation"},
			Correct:     0,
			Explanation: "Containers must stay labeled and stored as the safety data sheet directs.",
			Type:        "Chemical Safety",
		},
		{
			Question:    "What is the purpose of an emergency assembly point?",
			Options:     []string{"A) Shift change meetings", "B) Equipment staging", "C) Accounting for all personnel during an evacuation", "D) Visitor check-in"},
			Correct:     2,
			Explanation: "Assembly points let responders confirm everyone is out safely.",
			Type:        "Emergency Procedures",
		},
	}
	if count < len(questions) {
		questions = questions[:count]
	}

	return &models.GeneratedTraining{
		Training: models.TrainingContent{
			Introduction: fmt.Sprintf("Welcome to the %s training module for %s. This training has been customized using our company's specific procedures and policies.", draft.Title, company.Name),
			Sections: []models.TrainingSection{
				{
					Title:   "Company-Specific Procedures",
					Content: "This section is based on our latest company procedures and policies. Review each step and confirm you understand it before continuing.",
					KeyPoints: []string{
						"Follow company-specific protocols",
						"Apply department-specific safety requirements",
						"Utilize company-approved tools and methods",
					},
				},
				{
					Title:   "Working Safely Every Day",
					Content: "Safe operation depends on consistent habits. Inspect your equipment, wear the required protective equipment and report anything out of the ordinary.",
					KeyPoints: []string{
						"Inspect equipment before each use",
						"Wear required personal protective equipment",
						"Report unsafe conditions immediately",
					},
				},
			},
			SafetyNotes: []string{
				fmt.Sprintf("Follow all %s safety protocols", company.Name),
				"Comply with company-specific PPE requirements",
			},
			BestPractices: []string{
				"Utilize company-approved best practices",
				"Ask your supervisor when a procedure is unclear",
			},
			CommonMistakes: []string{
				"Deviating from established procedures",
				"Skipping pre-operation checks under time pressure",
			},
		},
		Quiz: questions,
	}
}

func (s *FallbackService) spanish(draft *models.TrainingDraft, company *models.CompanyProfile, count int) *models.GeneratedTraining {
	questions := []models.QuizQuestion{
		{
			Question:    fmt.Sprintf("Según el manual de seguridad de %s, ¿cuál es el primer paso requerido?", company.Name),
			Options:     []string{"A) Revisar las pautas generales", "B) Completar la lista de verificación pre-operacional", "C) Pedir permiso al supervisor", "D) Revisar los procedimientos estándar"},
			Correct:     1,
			Explanation: fmt.Sprintf("El manual de %s requiere completar la lista de verificación antes de operar.", company.Name),
			Type:        "Política de la Empresa",
		},
		{
			Question:    "¿Cuándo se debe inspeccionar el equipo de protección personal?",
			Options:     []string{"A) Una vez al mes", "B) Solo después de un incidente", "C) Antes de cada uso", "D) Durante la revisión anual"},
			Correct:     2,
			Explanation: "El EPP debe inspeccionarse antes de cada uso para detectar daños a tiempo.",
			Type:        "Procedimientos de Seguridad",
		},
		{
			Question:    "¿Qué debe hacer si observa una condición insegura?",
			Options:     []string{"A) Continuar trabajando con cuidado", "B) Informar a su supervisor de inmediato", "C) Arreglarla usted mismo más tarde", "D) Esperar a la próxima reunión de seguridad"},
			Correct:     1,
			Explanation: "Las condiciones inseguras deben reportarse de inmediato para corregirse.",
			Type:        "Procedimientos de Seguridad",
		},
		{
			Question:    "¿Quién es responsable de seguir los procedimientos documentados?",
			Options:     []string{"A) Solo los supervisores", "B) El departamento de seguridad", "C) Solo los empleados nuevos", "D) Todos los empleados"},
			Correct:     3,
			Explanation: "Los procedimientos documentados aplican a todos, sin importar el puesto.",
			Type:        "Política de la Empresa",
		},
		{
			Question:    "¿Cuál es la respuesta correcta ante una falla del equipo?",
			Options:     []string{"A) Detener, asegurar el equipo y reportarlo", "B) Reiniciar el equipo", "C) Aumentar la vigilancia y continuar", "D) Registrarla al final del turno"},
			Correct:     0,
			Explanation: "El equipo con fallas debe detenerse y asegurarse antes de reportarlo.",
			Type:        "Operaciones Técnicas",
		},
	}
	if count < len(questions) {
		questions = questions[:count]
	}

	return &models.GeneratedTraining{
		Training: models.TrainingContent{
			Introduction: fmt.Sprintf("Bienvenido al módulo de capacitación %s para %s. Esta capacitación ha sido personalizada utilizando los procedimientos y políticas específicos de nuestra empresa.", draft.Title, company.Name),
			Sections: []models.TrainingSection{
				{
					Title:   "Procedimientos Específicos de la Empresa",
					Content: "Esta sección se basa en nuestros procedimientos y políticas más recientes de la empresa. Revise cada paso y confirme que lo entiende antes de continuar.",
					KeyPoints: []string{
						"Seguir protocolos específicos de la empresa",
						"Aplicar requisitos de seguridad específicos del departamento",
						"Utilizar herramientas y métodos aprobados por la empresa",
					},
				},
			},
			SafetyNotes: []string{
				fmt.Sprintf("Seguir todos los protocolos de seguridad de %s", company.Name),
				"Cumplir con los requisitos específicos de EPP",
			},
			BestPractices: []string{
				"Utilizar mejores prácticas aprobadas por la empresa",
			},
			CommonMistakes: []string{
				"Desviarse de los procedimientos establecidos",
			},
		},
		Quiz: questions,
	}
}
