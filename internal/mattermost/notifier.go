package mattermost

import (
	"context"
	"fmt"
)

const notifyColor = "#F8CB46"

// ChannelNotifier posts admin notifications to a single channel.
type ChannelNotifier struct {
	client    *Client
	channelID string
}

func NewChannelNotifier(client *Client, channelID string) *ChannelNotifier {
	return &ChannelNotifier{client: client, channelID: channelID}
}

// ResolveChannelNotifier looks the channel up by team and name once, at startup.
func ResolveChannelNotifier(ctx context.Context, client *Client, teamID, channelName string) (*ChannelNotifier, error) {
	id, err := client.GetChannelByName(ctx, teamID, channelName)
	if err != nil {
		return nil, fmt.Errorf("resolve channel %q: %w", channelName, err)
	}
	return NewChannelNotifier(client, id), nil
}

func (n *ChannelNotifier) Notify(ctx context.Context, message string) error {
	_, err := n.client.CreatePost(ctx, &Post{
		ChannelID: n.channelID,
		Props: Props{Attachments: []Attachment{{
			Text:  message,
			Color: notifyColor,
		}}},
	})
	return err
}
