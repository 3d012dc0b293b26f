package git

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// RepoRef is a validated repository location.
type RepoRef struct {
	CloneURL string
	Owner    string
	Name     string
}

// URLPolicy controls which repository URLs are accepted.
type URLPolicy struct {
	// AllowedHosts restricts remote hosts; empty allows any host.
	AllowedHosts []string
	// AllowFileURLs accepts file:// URLs pointing at local repositories.
	AllowFileURLs bool
}

// NormalizeRepoURL validates raw and returns the URL git should clone along with the repository name.
func NormalizeRepoURL(raw string, policy URLPolicy) (RepoRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RepoRef{}, invalidURL(raw, errors.New("repo_url is required"))
	}

	if strings.HasPrefix(raw, "git@") {
		hostAndPath := strings.TrimPrefix(raw, "git@")
		host, repoPath, ok := strings.Cut(hostAndPath, ":")
		if !ok {
			return RepoRef{}, invalidURL(raw, errors.New("expected git@host:owner/repo"))
		}
		if err := policy.checkHost(host); err != nil {
			return RepoRef{}, invalidURL(raw, err)
		}
		owner, repo, ok := splitOwnerRepo(strings.TrimSuffix(repoPath, ".git"))
		if !ok {
			return RepoRef{}, invalidURL(raw, errors.New("expected owner/repo path"))
		}
		return RepoRef{
			CloneURL: fmt.Sprintf("git@%s:%s/%s.git", host, owner, repo),
			Owner:    owner,
			Name:     repo,
		}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return RepoRef{}, invalidURL(raw, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "https", "http":
	case "file":
		if !policy.AllowFileURLs {
			return RepoRef{}, invalidURL(raw, errors.New("file URLs are not allowed"))
		}
		name := strings.TrimSuffix(path.Base(strings.TrimRight(u.Path, "/")), ".git")
		if name == "" || name == "." || name == "/" {
			return RepoRef{}, invalidURL(raw, errors.New("missing repository path"))
		}
		return RepoRef{CloneURL: raw, Name: name}, nil
	default:
		return RepoRef{}, invalidURL(raw, fmt.Errorf("unsupported scheme %q", u.Scheme))
	}

	if err := policy.checkHost(u.Host); err != nil {
		return RepoRef{}, invalidURL(raw, err)
	}
	repoPath := strings.Trim(strings.TrimSuffix(strings.TrimRight(u.Path, "/"), ".git"), "/")
	owner, repo, ok := splitOwnerRepo(repoPath)
	if !ok {
		return RepoRef{}, invalidURL(raw, errors.New("expected owner/repo path"))
	}

	return RepoRef{
		CloneURL: fmt.Sprintf("%s://%s/%s/%s.git", strings.ToLower(u.Scheme), u.Host, owner, repo),
		Owner:    owner,
		Name:     repo,
	}, nil
}

// RepoName extracts the display name of a repository from its URL
// (e.g. "flask" from "https://github.com/pallets/flask.git").
func RepoName(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

func (p URLPolicy) checkHost(host string) error {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return errors.New("missing host")
	}
	if len(p.AllowedHosts) == 0 {
		return nil
	}
	for _, allowed := range p.AllowedHosts {
		if strings.EqualFold(strings.TrimSpace(allowed), host) {
			return nil
		}
	}
	return fmt.Errorf("host %q is not allowed (allowed: %s)", host, strings.Join(p.AllowedHosts, ", "))
}

func splitOwnerRepo(repoPath string) (owner, repo string, ok bool) {
	repoPath = strings.Trim(repoPath, "/")
	parts := strings.Split(repoPath, "/")
	if len(parts) < 2 {
		return "", "", false
	}
	owner = strings.TrimSpace(parts[0])
	repo = strings.TrimSpace(parts[1])
	if owner == "" || repo == "" || owner == "." || owner == ".." || repo == "." || repo == ".." {
		return "", "", false
	}
	return owner, repo, true
}

func invalidURL(raw string, err error) error {
	return &AcquisitionError{Kind: KindInvalidURL, URL: raw, Err: err}
}
