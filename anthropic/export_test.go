package anthropic

import "github.com/edubot/edubot"

// ConvertRoles exposes the roles convertMessages produces, in order.
func ConvertRoles(msgs []edubot.Message) []string {
	var roles []string
	for _, m := range convertMessages(msgs) {
		roles = append(roles, m.Role)
	}
	return roles
}
