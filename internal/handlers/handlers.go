package handlers

import (
	"FounderHub/server/internal/services"
	"FounderHub/server/internal/stream"
)

var (
	userService        = services.NewUserService()
	startupService     = services.NewStartupService()
	invitationService  services.InvitationService
	chatService        services.ChatService
	privateChatService services.PrivateChatService
	coordinator        services.Coordinator
)

func init() {
	invitationService = services.NewInvitationService(startupService, userService)
	chatService = services.NewChatService(userService, stream.GlobalBroker)
	privateChatService = services.NewPrivateChatService(userService, stream.GlobalBroker)
	coordinator = services.NewCoordinator(invitationService, chatService, privateChatService)
}
