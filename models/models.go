package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// Database schema overview:
// 1. users - Accounts managed by cookie-based authentication
// 2. refresh_tokens - Hashed long-lived tokens backing silent re-auth
// 3. interview_sessions - One row per interview attempt, tracking the
//    position, language and the current position in the 20-question curriculum
// 4. chat_messages - The ordered, turn-by-turn transcript of each interview
// 5. interview_evaluations - AI scores for candidate answers, unique per
//    (interview, question number)
