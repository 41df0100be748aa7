package handler

import (
	"servicemarket/internal/usecase"
)

var (
	authHandler        *AuthHandler
	userHandler        *UserHandler
	requirementHandler *RequirementHandler
	bidHandler         *BidHandler
	chatHandler        *ChatHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	requirementUseCase *usecase.RequirementUseCase,
	bidUseCase *usecase.BidUseCase,
	chatUseCase *usecase.ChatUseCase,
) {
	authHandler = NewAuthHandler(authUseCase)
	userHandler = NewUserHandler(userUseCase)
	requirementHandler = NewRequirementHandler(requirementUseCase)
	bidHandler = NewBidHandler(bidUseCase)
	chatHandler = NewChatHandler(chatUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetRequirementHandler() *RequirementHandler {
	return requirementHandler
}

func GetBidHandler() *BidHandler {
	return bidHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}
