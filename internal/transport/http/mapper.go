package http

import (
	"encoding/json"

	"github.com/fuzichat/fuzichat-server/internal/core"
	"github.com/fuzichat/fuzichat-server/internal/proto"
	"github.com/fuzichat/fuzichat-server/internal/store"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeSendMessage:
		var data proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed data payload"}
		}
		return &core.Command{
			Kind: core.CommandPostMessage,
			Post: core.PostDraft{
				Author:    data.User,
				Text:      data.Message,
				ImageURL:  data.ImageURL,
				VideoURL:  data.VideoURL,
				StickerID: data.StickerID,
				Password:  data.Password,
			},
		}, nil
	case proto.InboundTypeDeleteMessage:
		var data proto.DeleteMessageData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed data payload"}
		}
		if data.MessageID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "messageId is required"}
		}
		return &core.Command{
			Kind: core.CommandDeleteMessage,
			Delete: core.DeleteRequest{
				MessageID:   data.MessageID,
				User:        data.User,
				IsModerator: data.IsModerator,
				Token:       data.Token,
			},
		}, nil
	default:
		return nil, &proto.Error{Code: core.ErrCodeInvalidMessage, Msg: "unknown message type"}
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventHistory:
		messages := make([]proto.MessagePayload, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, messagePayload(msg))
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventChatHistory,
			Data:  proto.HistoryData{Messages: messages},
		}
	case core.EventMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventReceiveMessage,
			Data:  messagePayload(event.Message),
		}
	case core.EventMessageUpdated:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessageUpdated,
			Data:  messagePayload(event.Message),
		}
	case core.EventModeratorToken:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventModeratorToken,
			Data:  proto.TokenData{Token: event.Token},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func messagePayload(msg *store.Message) proto.MessagePayload {
	if msg == nil {
		return proto.MessagePayload{}
	}
	return proto.MessagePayload{
		ID:          msg.ID,
		User:        msg.Author,
		Message:     msg.Text,
		ImageURL:    msg.ImageURL,
		VideoURL:    msg.VideoURL,
		StickerID:   msg.StickerID,
		IsModerator: msg.IsModerator,
		IsDeleted:   msg.IsDeleted,
		CreatedAt:   msg.CreatedAt,
	}
}
