package kernel

type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

type OfferID string

func NewOfferID(id string) OfferID { return OfferID(id) }
func (o OfferID) String() string   { return string(o) }
func (o OfferID) IsEmpty() bool    { return string(o) == "" }

type ApplicationID string

func NewApplicationID(id string) ApplicationID { return ApplicationID(id) }
func (a ApplicationID) String() string         { return string(a) }
func (a ApplicationID) IsEmpty() bool          { return string(a) == "" }

type DocumentID string

func NewDocumentID(id string) DocumentID { return DocumentID(id) }
func (d DocumentID) String() string      { return string(d) }
func (d DocumentID) IsEmpty() bool       { return string(d) == "" }

type EvaluationID string

func NewEvaluationID(id string) EvaluationID { return EvaluationID(id) }
func (e EvaluationID) String() string        { return string(e) }
func (e EvaluationID) IsEmpty() bool         { return string(e) == "" }

type NotificationID string

func NewNotificationID(id string) NotificationID { return NotificationID(id) }
func (n NotificationID) String() string          { return string(n) }
func (n NotificationID) IsEmpty() bool           { return string(n) == "" }

type AccessRequestID string

func NewAccessRequestID(id string) AccessRequestID { return AccessRequestID(id) }
func (a AccessRequestID) String() string           { return string(a) }
func (a AccessRequestID) IsEmpty() bool            { return string(a) == "" }

type ReconciliationID string

func NewReconciliationID(id string) ReconciliationID { return ReconciliationID(id) }
func (r ReconciliationID) String() string            { return string(r) }
func (r ReconciliationID) IsEmpty() bool             { return string(r) == "" }
