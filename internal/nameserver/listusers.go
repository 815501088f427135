package nameserver

import "sort"

// ListUsers returns the sorted union of three sets: currently connected
// usernames, file owners, and every username named in any file's access
// list. A simpler "just connected users" rendering would silently drop
// owners and ACL grantees who aren't online right now.
func (s *Store) ListUsers(clients *clientTable) []string {
	seen := clients.Usernames()

	for _, r := range s.All() {
		seen[r.Owner] = struct{}{}
		for _, a := range r.Access {
			seen[a.Username] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for u := range seen {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
