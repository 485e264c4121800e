package state

import (
	"time"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
		// plain placeholder cover used when a project has no cover image
		DefaultCover: []byte(`<svg viewBox="0 0 600 800" xmlns="http://www.w3.org/2000/svg">
  <rect x="0" y="0" width="600" height="800" fill="#f4efe6"/>
  <rect x="30" y="30" width="540" height="740" fill="none" stroke="#6b5d4f" stroke-width="3"/>
  <rect x="50" y="50" width="500" height="700" fill="none" stroke="#6b5d4f" stroke-width="1"/>
  <path d="M200 330
           C230 300, 280 300, 300 325
           C320 300, 370 300, 400 330
           V470
           C370 445, 320 445, 300 465
           C280 445, 230 445, 200 470
           Z"
        fill="none" stroke="#6b5d4f" stroke-width="4"/>
  <line x1="300" y1="325" x2="300" y2="465" stroke="#6b5d4f" stroke-width="3"/>
  <circle cx="300" cy="560" r="34" fill="none" stroke="#6b5d4f" stroke-width="3"/>
  <path d="M288 545 V575 L312 560 Z" fill="#6b5d4f"/>
  <line x1="150" y1="640" x2="450" y2="640" stroke="#6b5d4f" stroke-width="2"/>
  <line x1="150" y1="180" x2="450" y2="180" stroke="#6b5d4f" stroke-width="2"/>
</svg>`),
	}
}
