package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// All models are automatically exported from their respective files:
// - User, RefreshToken, Invitation from user.go
// - Employee, TrainingRecord, RecommendedTraining from employee.go
// - TrainingDraft, Training, GeneratedTraining, QuizResult from training.go
// - SetupConfig and its section types from setup.go

// Database schema overview:
// 1. users - Platform accounts managed by cookie-based authentication
// 2. invitations - Pending company-scoped signup invitations
// 3. employees - The company roster with training counters and history
// 4. training_drafts - In-progress authoring state, mutated field-by-field
// 5. trainings - Generated training modules with their quizzes
// 6. quiz_results - One row per quiz submission, linked to employee and training
// 7. setup_configs - One row per company, written by the setup wizard
