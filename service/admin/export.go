package admin

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/beconnected/beconnected-server/cmd/models"
)

// userSnapshot is the export projection of a user: every profile attribute
// listed explicitly, followed by the derived collections. Field order here is
// the element order of the XML output, so new fields go at the end of their
// group.
type userSnapshot struct {
	XMLName xml.Name `json:"-" xml:"user"`

	UserID             uint      `json:"userId" xml:"userId"`
	Username           string    `json:"username" xml:"username"`
	Email              string    `json:"email" xml:"email"`
	PasswordHash       string    `json:"passwordHash" xml:"passwordHash"`
	FirstName          string    `json:"firstName" xml:"firstName"`
	LastName           string    `json:"lastName" xml:"lastName"`
	Phone              string    `json:"phone" xml:"phone"`
	Bio                string    `json:"bio" xml:"bio"`
	Role               string    `json:"role" xml:"role"`
	EmailVerified      bool      `json:"emailVerified" xml:"emailVerified"`
	ProfilePicturePath string    `json:"profilePicturePath" xml:"profilePicturePath"`
	MemberSince        time.Time `json:"memberSince" xml:"memberSince"`
	UpdatedAt          time.Time `json:"updatedAt" xml:"updatedAt"`

	EmailVerificationCode string    `json:"emailVerificationCode" xml:"emailVerificationCode"`
	VerificationExpiry    time.Time `json:"verificationExpiry" xml:"verificationExpiry"`
	RefreshToken          string    `json:"refreshToken" xml:"refreshToken"`
	RefreshTokenExpiredAt time.Time `json:"refreshTokenExpiredAt" xml:"refreshTokenExpiredAt"`

	PostsByUser          []postExport       `json:"postsByUser" xml:"postsByUser>post"`
	PostsLikedByUser     []postExport       `json:"postsLikedByUser" xml:"postsLikedByUser>post"`
	PostsCommentedByUser []postExport       `json:"postsCommentedByUser" xml:"postsCommentedByUser>post"`
	Connections          []connectionExport `json:"connections" xml:"connections>connection"`
	JobsCreatedByUser    []jobExport        `json:"jobsCreatedByUser" xml:"jobsCreatedByUser>job"`

	Error string `json:"error,omitempty" xml:"error,omitempty"`
}

type usersExport struct {
	XMLName xml.Name       `xml:"users"`
	Users   []userSnapshot `xml:"user"`
}

// postExport is the shallow projection of a post inside a snapshot. The
// author appears only as an id, never as an expanded user, so the
// user->post->author chain cannot recurse.
type postExport struct {
	PostID      uint      `json:"postId" xml:"postId"`
	TextContent string    `json:"textContent" xml:"textContent"`
	MediaType   string    `json:"mediaType,omitempty" xml:"mediaType,omitempty"`
	AuthorID    uint      `json:"authorId" xml:"authorId"`
	LikesCount  int       `json:"likesCount" xml:"likesCount"`
	CreatedAt   time.Time `json:"createdAt" xml:"createdAt"`
}

type connectionExport struct {
	UserID    uint   `json:"userId" xml:"userId"`
	Username  string `json:"username" xml:"username"`
	FirstName string `json:"firstName" xml:"firstName"`
	LastName  string `json:"lastName" xml:"lastName"`
}

type jobExport struct {
	JobID       uint      `json:"jobId" xml:"jobId"`
	Title       string    `json:"title" xml:"title"`
	Description string    `json:"description" xml:"description"`
	Skills      []string  `json:"skills" xml:"skills>skill"`
	CreatedBy   string    `json:"createdBy" xml:"createdBy"`
	CreatedAt   time.Time `json:"createdAt" xml:"createdAt"`
}

// buildSnapshot assembles the export view of one user. A collaborator
// failure does not abort assembly: the first failure is recorded under the
// snapshot's error field and the remaining collections are still collected.
func (s *Service) buildSnapshot(user *models.User) userSnapshot {
	snap := userSnapshot{
		UserID:             user.ID,
		Username:           user.Username,
		Email:              user.Email,
		PasswordHash:       user.PasswordHash,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Phone:              user.Phone,
		Bio:                user.Bio,
		Role:               user.Role,
		EmailVerified:      user.EmailVerified,
		ProfilePicturePath: user.ProfilePicturePath,
		MemberSince:        user.CreatedAt,
		UpdatedAt:          user.UpdatedAt,

		EmailVerificationCode: user.EmailVerificationCode,
		VerificationExpiry:    user.VerificationExpiry,
		RefreshToken:          user.Refresh,
		RefreshTokenExpiredAt: user.RefreshTokenExpiredAt,
	}

	recordErr := func(context string, err error) {
		if snap.Error == "" {
			snap.Error = fmt.Sprintf("%s: %s", context, err.Error())
		}
	}

	if posts, err := s.posts.GetPostsByAuthor(user.ID); err != nil {
		recordErr("failed to collect posts by user", err)
	} else {
		snap.PostsByUser = projectPosts(posts)
	}

	if posts, err := s.posts.GetPostsLikedByUser(user.ID); err != nil {
		recordErr("failed to collect posts liked by user", err)
	} else {
		snap.PostsLikedByUser = projectPosts(posts)
	}

	if posts, err := s.posts.GetPostsCommentedByUser(user.ID); err != nil {
		recordErr("failed to collect posts commented by user", err)
	} else {
		snap.PostsCommentedByUser = projectPosts(posts)
	}

	if conns, err := s.connections.GetConnections(user); err != nil {
		recordErr("failed to collect connections", err)
	} else {
		snap.Connections = projectConnections(conns)
	}

	if jobs, err := s.jobs.GetJobsByUser(user.Username); err != nil {
		recordErr("failed to collect jobs created by user", err)
	} else {
		snap.JobsCreatedByUser = projectJobs(jobs)
	}

	return snap
}

func projectPosts(posts []models.Post) []postExport {
	out := make([]postExport, 0, len(posts))
	for _, p := range posts {
		out = append(out, postExport{
			PostID:      p.ID,
			TextContent: p.TextContent,
			MediaType:   p.MediaType,
			AuthorID:    p.UserID,
			LikesCount:  p.LikesCount,
			CreatedAt:   p.CreatedAt,
		})
	}
	return out
}

func projectConnections(users []models.User) []connectionExport {
	out := make([]connectionExport, 0, len(users))
	for _, u := range users {
		out = append(out, connectionExport{
			UserID:    u.ID,
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		})
	}
	return out
}

func projectJobs(jobs []models.Job) []jobExport {
	out := make([]jobExport, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, jobExport{
			JobID:       j.ID,
			Title:       j.Title,
			Description: j.Description,
			Skills:      []string(j.Skills),
			CreatedBy:   j.CreatedBy,
			CreatedAt:   j.CreatedAt,
		})
	}
	return out
}

func serialize(v interface{}, format string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	case "xml":
		data, err := xml.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
