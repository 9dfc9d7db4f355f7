// Copyright 2022 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2022 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mail provides e-mail notifications about finished
// background jobs.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	cncmail "github.com/czcorpus/cnc-gokit/mail"
)

var (
	NotFoundMsgPlaceholder = "??"
)

// EmailNotification extends the cnc-gokit notification configuration
// with SMTP server access required to actually dispatch messages.
type EmailNotification struct {
	cncmail.NotificationConf
	SMTPServer   string `json:"smtpServer"`
	SMTPPort     int    `json:"smtpPort"`
	SMTPUsername string `json:"smtpUsername"`
	SMTPPassword string `json:"smtpPassword"`
	SenderAddr   string `json:"senderAddr"`
}

// LocalizedSignature returns a mail signature based on configuration
// and provided language. It is able to search for 2-character codes
// in case 5-ones are not matching.
// In case nothing is found, the returned message is NotFoundMsgPlaceholder
// (and an error is returned).
func (enConf EmailNotification) LocalizedSignature(lang string) (string, error) {
	if msg, ok := enConf.Signature[lang]; ok {
		return msg, nil
	}
	lang2 := strings.Split(lang, "-")[0]
	for k, msg := range enConf.Signature {
		if strings.Split(k, "-")[0] == lang2 {
			return msg, nil
		}
	}
	return NotFoundMsgPlaceholder, fmt.Errorf("e-mail signature for language %s not found", lang)
}

func (enConf EmailNotification) HasSignature() bool {
	return len(enConf.Signature) > 0
}

func (enConf EmailNotification) DefaultSignature(lang string) string {
	if lang == "cs" || lang == "cs-CZ" {
		return "Váš UDEval"
	}
	return "Yours UDEval"
}

// SendNotification sends a plain text message composed of the
// provided paragraphs to all the recipients at once.
func SendNotification(conf *EmailNotification, recipients []string, subject string, paragraphs ...string) error {
	if conf.SMTPServer == "" {
		return fmt.Errorf("cannot send notification, smtpServer is not configured")
	}
	port := conf.SMTPPort
	if port == 0 {
		port = 25
	}
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", conf.SenderAddr)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	for _, para := range paragraphs {
		msg.WriteString(para)
		msg.WriteString("\r\n\r\n")
	}
	var auth smtp.Auth
	if conf.SMTPUsername != "" {
		auth = smtp.PlainAuth("", conf.SMTPUsername, conf.SMTPPassword, conf.SMTPServer)
	}
	return smtp.SendMail(
		fmt.Sprintf("%s:%d", conf.SMTPServer, port),
		auth,
		conf.SenderAddr,
		recipients,
		[]byte(msg.String()),
	)
}
