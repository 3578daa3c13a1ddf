package http

import (
	"encoding/json"

	"github.com/vovakirdan/dmchat-server/internal/core"
	"github.com/vovakirdan/dmchat-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind: core.CommandJoin,
			ID:   inbound.ID,
			Join: &core.JoinRequest{Nickname: join.Nickname},
		}, nil, nil

	case proto.InboundTypeSend:
		var send proto.SendData
		if err := json.Unmarshal(inbound.Data, &send); err != nil {
			return nil, nil, err
		}
		if send.To == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "recipient is required"}, nil
		}
		req := &core.SendRequest{
			To:       send.To,
			Kind:     core.MessageKind(send.Kind),
			Content:  send.Content,
			FileURL:  send.FileURL,
			FileName: send.FileName,
			FileSize: send.FileSize,
			MimeType: send.MimeType,
		}
		if send.Location != nil {
			req.Location = &core.Location{
				Latitude:  send.Location.Latitude,
				Longitude: send.Location.Longitude,
				Address:   send.Location.Address,
			}
		}
		return &core.Command{
			Kind: core.CommandSend,
			ID:   inbound.ID,
			Send: req,
		}, nil, nil

	case proto.InboundTypeLoadHistory:
		var load proto.LoadHistoryData
		if err := json.Unmarshal(inbound.Data, &load); err != nil {
			return nil, nil, err
		}
		if load.Counterpart == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "counterpart is required"}, nil
		}
		return &core.Command{
			Kind:    core.CommandLoadHistory,
			ID:      inbound.ID,
			History: &core.HistoryRequest{Counterpart: load.Counterpart, Limit: load.Limit},
		}, nil, nil

	case proto.InboundTypeMarkRead:
		var mark proto.MarkReadData
		if err := json.Unmarshal(inbound.Data, &mark); err != nil {
			return nil, nil, err
		}
		if mark.From == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "from is required"}, nil
		}
		return &core.Command{
			Kind:     core.CommandMarkRead,
			ID:       inbound.ID,
			MarkRead: &core.MarkReadRequest{From: mark.From},
		}, nil, nil

	default:
		return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) (proto.Outbound, bool) {
	switch event.Kind {
	case core.EventReply:
		out := proto.Outbound{Type: proto.OutboundTypeReply, ID: event.ID}
		if event.Err != nil {
			out.Error = &proto.Error{Code: event.Err.Code, Msg: event.Err.Message}
			return out, true
		}
		switch {
		case event.Join != nil:
			out.Data = proto.JoinResult{Nickname: event.Join.Nickname, Roster: event.Join.Roster}
		case event.Message != nil:
			out.Data = wireMessage(event.Message)
		case event.Messages != nil:
			messages := make([]proto.WireMessage, 0, len(event.Messages))
			for _, msg := range event.Messages {
				messages = append(messages, wireMessage(msg))
			}
			out.Data = proto.MessageList{Messages: messages}
		}
		return out, true

	case core.EventRoster:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameRoster,
			Data:  event.Roster,
		}, true

	case core.EventMessageDelivered:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameMessage,
			Data:  wireMessage(event.Message),
		}, true

	case core.EventNotification:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameNotification,
			Data: proto.NotificationData{
				From:    event.Notification.From,
				Preview: event.Notification.Preview,
				Kind:    string(event.Notification.Kind),
				TS:      event.Notification.Timestamp.Unix(),
			},
		}, true

	default:
		return proto.Outbound{}, false
	}
}

func wireMessage(msg *core.Message) proto.WireMessage {
	wire := proto.WireMessage{
		ID:       msg.ID,
		From:     msg.From,
		To:       msg.To,
		Kind:     string(msg.Kind),
		Content:  msg.Content,
		FileURL:  msg.FileURL,
		FileName: msg.FileName,
		FileSize: msg.FileSize,
		MimeType: msg.MimeType,
		Read:     msg.Read,
		TS:       msg.CreatedAt.Unix(),
	}
	if msg.Location != nil {
		wire.Location = &proto.LocationData{
			Latitude:  msg.Location.Latitude,
			Longitude: msg.Location.Longitude,
			Address:   msg.Location.Address,
		}
	}
	return wire
}
