// Copyright 2023 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2023 Institute of the Czech National Corpus,
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

// Package translations provides localized versions of messages
// produced by job notifications. To activate the catalog, import
// the package for its side effects.
package translations

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	for key, trans := range map[string]string{
		"A background job has finished": "Úloha běžící na pozadí byla dokončena",
		"Job: %s":                       "Úloha: %s",
		"ID: %s":                        "ID: %s",
		"Treebank: %s":                  "Treebank: %s",
		"Job finished without errors":   "Úloha skončila bez chyb",
		"Job finished with error: %s":   "Úloha skončila s chybou: %s",
		"Evaluation of a parsed treebank against its gold standard": "Vyhodnocení automaticky anotovaného treebanku proti zlatému standardu",
		"Testing and debugging empty job":                           "Testovací a ladicí prázdná úloha",
		"Unknown job":                                               "Neznámá úloha",
	} {
		if err := message.SetString(language.Czech, key, trans); err != nil {
			panic(err)
		}
	}
}
