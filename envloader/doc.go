// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Package envloader carrega variáveis de ambiente para campos de uma struct
// via reflection, usando as tags `env` e `envDefault`.
//
// É usado no bootstrap da função para ler as variáveis que precedem o YAML
// (caminho da configuração, região, nível de log).
//
// Tags:
//   - env:"NOME" mapeia a variável.
//   - env:"NOME,required" falha com *RequiredError se a variável não existir
//     e não houver envDefault. Todas as ausentes são listadas juntas.
//   - envDefault:"valor" é usado quando a variável está vazia.
//
// Tipos suportados: string, int*, uint*, bool, float*, time.Duration e
// []string (separado por vírgula). Structs aninhadas e ponteiros para struct
// são percorridos.
//
// Exemplo:
//
//	type Bootstrap struct {
//	    ConfigPath string        `env:"CONFIG_FILE_PATH,required"`
//	    Region     string        `env:"AWS_REGION" envDefault:"sa-east-1"`
//	    Timeout    time.Duration `env:"INVOKE_TIMEOUT" envDefault:"3s"`
//	}
//
//	var env Bootstrap
//	if err := envloader.Load(&env); err != nil {
//	    log.Fatal(err)
//	}
package envloader
