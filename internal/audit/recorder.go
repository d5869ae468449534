// Package audit appends immutable event records describing who did what.
// Writes are best effort: a failed audit insert is logged and never aborts
// the business operation that triggered it.
package audit

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"picvault/internal/domain"
	"picvault/internal/repository"
)

const writeTimeout = 5 * time.Second

// Recorder writes audit entries asynchronously.
type Recorder struct {
	repo   repository.AuditRepository
	logger *logrus.Logger
	wg     sync.WaitGroup
}

func NewRecorder(repo repository.AuditRepository, logger *logrus.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record persists the entry in the background and returns immediately.
func (r *Recorder) Record(entry domain.AuditEntry) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := r.repo.Create(ctx, &entry); err != nil {
			r.logger.WithFields(logrus.Fields{
				"event_type":  entry.EventType,
				"operator_id": entry.OperatorID,
			}).Warnf("write audit entry: %v", err)
		}
	}()
}

// Wait blocks until every in-flight write has finished. Called on shutdown.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

// UserCreated records a registration event.
func (r *Recorder) UserCreated(user *domain.User, ip string) {
	r.logger.Infof("act=user_create user=%s user_id=%d ip=%s", user.UserName, user.ID, ip)
	r.Record(domain.AuditEntry{
		OperatorID:   user.ID,
		OperatorName: user.UserName,
		SystemID:     domain.SystemUser,
		EventType:    domain.EventUserCreate,
		ObjectType:   domain.ObjectUserConf,
		ObjectID:     strconv.FormatInt(user.ID, 10),
		ObjectName:   user.UserName,
		IPAddress:    ip,
	})
}

// UserLogin records a successful login.
func (r *Recorder) UserLogin(user *domain.User, ip string) {
	r.logger.Infof("act=user_login user=%s user_id=%d ip=%s", user.UserName, user.ID, ip)
	r.Record(domain.AuditEntry{
		OperatorID:   user.ID,
		OperatorName: user.UserName,
		SystemID:     domain.SystemUser,
		EventType:    domain.EventUserLogin,
		ObjectType:   domain.ObjectNone,
		IPAddress:    ip,
	})
}

// UserLogout records a logout.
func (r *Recorder) UserLogout(user *domain.User, ip string) {
	r.Record(domain.AuditEntry{
		OperatorID:   user.ID,
		OperatorName: user.UserName,
		SystemID:     domain.SystemUser,
		EventType:    domain.EventUserLogout,
		ObjectType:   domain.ObjectNone,
		IPAddress:    ip,
	})
}

// UserUpdated records an account edit performed by actor on target.
func (r *Recorder) UserUpdated(actor, target *domain.User, ip, note string) {
	r.logger.Infof("act=update_user actor=%s target_id=%d ip=%s note=%s", actor.UserName, target.ID, ip, note)
	r.Record(domain.AuditEntry{
		OperatorID:   actor.ID,
		OperatorName: actor.UserName,
		SystemID:     domain.SystemUser,
		EventType:    domain.EventUserUpdate,
		ObjectType:   domain.ObjectUserConf,
		ObjectID:     strconv.FormatInt(target.ID, 10),
		ObjectName:   target.UserName,
		IPAddress:    ip,
		Note:         note,
	})
}

// ImageUploaded records a successful image upload.
func (r *Recorder) ImageUploaded(actor *domain.User, img *domain.Image, ip string) {
	r.Record(domain.AuditEntry{
		OperatorID:   actor.ID,
		OperatorName: actor.UserName,
		SystemID:     domain.SystemImage,
		EventType:    domain.EventImageUpload,
		ObjectType:   domain.ObjectFile,
		ObjectID:     strconv.FormatInt(img.ID, 10),
		ObjectName:   img.FileName,
		IPAddress:    ip,
	})
}

// ImageDeleted records an image delete; note distinguishes soft vs permanent.
func (r *Recorder) ImageDeleted(actor *domain.User, imageID int64, ip, note string) {
	r.Record(domain.AuditEntry{
		OperatorID:   actor.ID,
		OperatorName: actor.UserName,
		SystemID:     domain.SystemImage,
		EventType:    domain.EventImageDelete,
		ObjectType:   domain.ObjectFile,
		ObjectID:     strconv.FormatInt(imageID, 10),
		IPAddress:    ip,
		Note:         note,
	})
}
